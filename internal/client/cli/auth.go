package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/sellingcar/internal/client/models"
	"github.com/dmitrijs2005/sellingcar/internal/client/services"
	"github.com/dmitrijs2005/sellingcar/internal/client/view"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Login authenticates with a national id and phone number, taken from args
// or prompted for. The open list is reloaded so it picks up the new token.
func (a *App) Login(ctx context.Context, args []string) error {
	var nationalID, phone string
	switch len(args) {
	case 2:
		nationalID, phone = args[0], args[1]
	case 0:
		var err error
		if nationalID, err = getSimpleText(a.reader, "National ID", a.out); err != nil {
			return err
		}
		if phone, err = getSecret(a.reader, "Phone number", a.out); err != nil {
			return err
		}
	default:
		printlnFn("Usage: login [nationalId phoneNumber]")
		return errors.New("bad usage")
	}

	s, err := a.authService.Login(ctx, nationalID, phone)
	if err != nil {
		printlnFn("Login unsuccessful:", view.Message(err))
		a.log.Debug(ctx, "login failed", "error", err)
		return err
	}

	printlnFn("Logged in as", s.DisplayName())
	if a.current != nil {
		_ = a.Refresh(ctx)
	}
	return nil
}

// Logout forgets the persisted session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI prints the stored user object.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.authService.Current()
	if s == nil {
		printlnFn("Not logged in")
		return services.ErrNotLoggedIn
	}
	keys := make([]string, 0, len(s.User))
	for k := range s.User {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.DisplayName())
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, models.FormatValue(s.User[k], ""))
	}
	_, err := fmt.Fprint(a.out, b.String())
	return err
}
