package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/auth"
	"github.com/dmitrijs2005/sellingcar/internal/server/config"
	"github.com/dmitrijs2005/sellingcar/internal/server/models"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
)

const customersTable = "customers"

// CustomerService authenticates customers by national id and phone number
// and issues access tokens.
type CustomerService struct {
	repo          records.Repository
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewCustomerService(repo records.Repository, cfg *config.Config) *CustomerService {
	return &CustomerService{
		repo:          repo,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
	}
}

// Login returns the matching customer row and a token for it. Unknown
// customers and wrong phone numbers both yield common.ErrorUnauthorized.
func (s *CustomerService) Login(ctx context.Context, nationalID, phoneNumber string) (models.Row, string, error) {
	rows, err := s.repo.List(ctx, customersTable)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	for _, row := range rows {
		nid, _ := row["nationalId"].(string)
		if nid == "" || nid != nationalID {
			continue
		}
		phone, _ := row["phoneNumber"].(string)
		if !s.checkPhone(phone, phoneNumber) {
			return nil, "", common.ErrorUnauthorized
		}
		token, err := auth.GenerateToken(formatKeyPart(row["id"]), s.jwtSecret, s.tokenValidity)
		if err != nil {
			return nil, "", common.ErrorInternal
		}
		return row, token, nil
	}
	return nil, "", common.ErrorUnauthorized
}

func (s *CustomerService) checkPhone(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
