package records

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/models"
)

type table struct {
	order []string
	rows  map[string]models.Row
}

// MemoryRepository keeps all tables in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tables: make(map[string]*table)}
}

func (r *MemoryRepository) List(ctx context.Context, name string) ([]models.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := r.tables[name]
	if t == nil {
		return []models.Row{}, nil
	}
	out := make([]models.Row, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.rows[k].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, name, key string) (models.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := r.tables[name]
	if t == nil {
		return nil, fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	row, ok := t.rows[key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	return row.Clone(), nil
}

func (r *MemoryRepository) Insert(ctx context.Context, name, key string, row models.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.tables[name]
	if t == nil {
		t = &table{rows: make(map[string]models.Row)}
		r.tables[name] = t
	}
	if _, ok := t.rows[key]; ok {
		return fmt.Errorf("%s/%s: %w", name, key, common.ErrorAlreadyExists)
	}
	t.order = append(t.order, key)
	t.rows[key] = row.Clone()
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, name, key string, row models.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.tables[name]
	if t == nil {
		return fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	if _, ok := t.rows[key]; !ok {
		return fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	t.rows[key] = row.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, name, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.tables[name]
	if t == nil {
		return fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	if _, ok := t.rows[key]; !ok {
		return fmt.Errorf("%s/%s: %w", name, key, common.ErrorNotFound)
	}
	delete(t.rows, key)
	t.order = slices.DeleteFunc(t.order, func(k string) bool { return k == key })
	return nil
}
