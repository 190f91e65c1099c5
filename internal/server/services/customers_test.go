package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/auth"
	"github.com/dmitrijs2005/sellingcar/internal/server/config"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
)

func newCustomerService(t *testing.T) *CustomerService {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	repo := records.NewMemoryRepository()
	rs := NewRecordService(c, repo)
	d, err := c.Get("customers")
	require.NoError(t, err)
	_, err = rs.Create(context.Background(), d, map[string]any{
		"nationalId": "0012345678", "phoneNumber": "0912", "name": "Sara",
	})
	require.NoError(t, err)

	return NewCustomerService(repo, &config.Config{SecretKey: "k", TokenValidity: time.Hour})
}

func TestLogin_Success(t *testing.T) {
	cs := newCustomerService(t)

	user, token, err := cs.Login(context.Background(), "0012345678", "0912")
	require.NoError(t, err)
	assert.Equal(t, "Sara", user["name"])

	id, err := auth.CustomerIDFromToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestLogin_Rejected(t *testing.T) {
	cs := newCustomerService(t)
	ctx := context.Background()

	_, _, err := cs.Login(ctx, "0012345678", "0000")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = cs.Login(ctx, "999", "0912")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = cs.Login(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
