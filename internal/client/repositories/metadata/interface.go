// Package metadata is the local key/value store of the client. It keeps
// the login session (user object, bearer token, session id) between runs.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get reports a missing key with
// common.ErrorNotFound.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
