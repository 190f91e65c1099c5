// Package records stores the rows of every resource table served by the
// development backend. Rows are addressed by their canonical key string.
package records

import (
	"context"

	"github.com/dmitrijs2005/sellingcar/internal/server/models"
)

// Repository is the table storage contract.
//
//   - List returns rows in insertion order; an unknown table is empty.
//   - Get, Update and Delete report a missing row as common.ErrorNotFound.
//   - Insert reports a taken key as common.ErrorAlreadyExists.
//
// Returned rows are copies.
type Repository interface {
	List(ctx context.Context, table string) ([]models.Row, error)
	Get(ctx context.Context, table, key string) (models.Row, error)
	Insert(ctx context.Context, table, key string, row models.Row) error
	Update(ctx context.Context, table, key string, row models.Row) error
	Delete(ctx context.Context, table, key string) error
}
