package client

import (
	"context"

	"github.com/dmitrijs2005/sellingcar/internal/client/models"
)

// ResourceClient performs CRUD calls against one resource collection.
type ResourceClient interface {
	List(ctx context.Context) ([]models.Record, error)
	// Create returns the created record, or nil when the backend replies
	// with an empty body.
	Create(ctx context.Context, body map[string]any) (models.Record, error)
	Update(ctx context.Context, key models.Key, body map[string]any) error
	// Remove treats an already missing record as success.
	Remove(ctx context.Context, key models.Key) error
}
