// Package services contains application services for the SellingCar client.
// This file defines the authentication service: login against the customers
// endpoint, restoring a persisted session, and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sellingcar/internal/client/client"
	"github.com/dmitrijs2005/sellingcar/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/dbx"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
)

var (
	ErrLoginFailed = errors.New("login failed")
	ErrNotLoggedIn = errors.New("not logged in")
)

// Doer sends one JSON request. *client.Transport satisfies it.
type Doer interface {
	Do(ctx context.Context, method, url string, in, out any) error
}

// Session is the logged-in customer as returned by the login endpoint.
type Session struct {
	ID    string
	User  map[string]any
	Token string
}

// DisplayName renders the user for prompts and whoami.
func (s *Session) DisplayName() string {
	var parts []string
	for _, k := range []string{"name", "lastName"} {
		if v, ok := s.User[k].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if v, ok := s.User["nationalId"]; ok {
		return fmt.Sprint(v)
	}
	return "customer"
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the backend and persist the session.
//   - Restore: load a previously persisted session.
//   - Logout: forget the session locally.
//   - Current / Token: read the active session; Token fits client.TokenFunc.
type AuthService interface {
	Login(ctx context.Context, nationalID, phoneNumber string) (*Session, error)
	Restore(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	Current() *Session
	Token() string
}

type loginRequest struct {
	NationalID  string `json:"nationalId"`
	PhoneNumber string `json:"phoneNumber"`
}

type loginResponse struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

type authService struct {
	doer     Doer
	loginURL string
	db       *sql.DB
	log      logging.Logger

	mu      sync.RWMutex
	current *Session
}

// NewAuthService binds the service to the auth base URL (the login route
// lives outside the data API) and the local database.
func NewAuthService(doer Doer, authBaseURL string, db *sql.DB, log logging.Logger) AuthService {
	return &authService{
		doer:     doer,
		loginURL: strings.TrimRight(authBaseURL, "/") + "/customers/login",
		db:       db,
		log:      log,
	}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Login posts the credentials. A backend rejection carrying a message is
// reported as ErrLoginFailed with that message.
func (a *authService) Login(ctx context.Context, nationalID, phoneNumber string) (*Session, error) {
	var resp loginResponse
	err := a.doer.Do(ctx, http.MethodPost, a.loginURL,
		loginRequest{NationalID: nationalID, PhoneNumber: phoneNumber}, &resp)
	if err != nil {
		var se *client.ServerError
		if errors.As(err, &se) {
			if se.Message != "" {
				return nil, fmt.Errorf("%w: %s", ErrLoginFailed, se.Message)
			}
			return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		return nil, fmt.Errorf("login error: %w", err)
	}
	if len(resp.User) == 0 {
		return nil, fmt.Errorf("%w: no user in response", ErrLoginFailed)
	}

	s := &Session{ID: uuid.NewString(), User: resp.User, Token: resp.Token}
	if err := a.save(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.mu.Lock()
	a.current = s
	a.mu.Unlock()

	a.log.Info(ctx, "logged in", "session_id", s.ID)
	return s, nil
}

func (a *authService) save(ctx context.Context, s *Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := metadata.SetJSON(ctx, repo, common.UserMetadataKey, s.User); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(s.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.SessionIDMetadataKey, []byte(s.ID))
	})
}

// Restore loads the persisted session, if any, and makes it current.
func (a *authService) Restore(ctx context.Context) (*Session, error) {
	repo := a.getMetadataRepo(a.db)

	s := &Session{}
	if err := metadata.GetJSON(ctx, repo, common.UserMetadataKey, &s.User); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	for key, dst := range map[string]*string{
		common.TokenMetadataKey:     &s.Token,
		common.SessionIDMetadataKey: &s.ID,
	} {
		v, err := repo.Get(ctx, key)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		*dst = string(v)
	}

	a.mu.Lock()
	a.current = s
	a.mu.Unlock()
	return s, nil
}

// Logout wipes the persisted session.
func (a *authService) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		for _, k := range []string{common.UserMetadataKey, common.TokenMetadataKey, common.SessionIDMetadataKey} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
	return nil
}

func (a *authService) Current() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

func (a *authService) Token() string {
	if s := a.Current(); s != nil {
		return s.Token
	}
	return ""
}
