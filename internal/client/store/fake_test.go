package store

import (
	"context"
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/client"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
)

// fakeClient is an in-memory ResourceClient. Hooks run after the call is
// counted and may block; List captures its result before its hook runs.
type fakeClient struct {
	desc *catalog.Descriptor

	mu     sync.Mutex
	rows   []models.Record
	nextID int64

	listCalls, createCalls, updateCalls, removeCalls int

	listErr, createErr, updateErr, removeErr error

	onList   func(ctx context.Context, call int) error
	onUpdate func(ctx context.Context) error
	onRemove func(ctx context.Context) error
}

var _ client.ResourceClient = (*fakeClient)(nil)

func newFake(t *testing.T, resource string, rows ...models.Record) *fakeClient {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	d, err := c.Get(resource)
	require.NoError(t, err)
	return &fakeClient{desc: d, rows: rows, nextID: int64(len(rows)) + 1}
}

func (f *fakeClient) List(ctx context.Context) ([]models.Record, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	err := f.listErr
	out := make([]models.Record, len(f.rows))
	for i, r := range f.rows {
		out[i] = maps.Clone(r)
	}
	hook := f.onList
	f.mu.Unlock()

	if hook != nil {
		if herr := hook(ctx, call); herr != nil {
			return nil, herr
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeClient) Create(ctx context.Context, body map[string]any) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := models.Record(maps.Clone(body))
	if f.desc.IsKey("id") {
		r["id"] = f.nextID
		f.nextID++
	}
	f.rows = append(f.rows, r)
	return maps.Clone(r), nil
}

func (f *fakeClient) Update(ctx context.Context, key models.Key, body map[string]any) error {
	f.mu.Lock()
	f.updateCalls++
	hook := f.onUpdate
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, r := range f.rows {
		if models.KeyOf(f.desc, r).Equal(key) {
			maps.Copy(r, body)
			return nil
		}
	}
	return &client.ServerError{Status: 404}
}

func (f *fakeClient) Remove(ctx context.Context, key models.Key) error {
	f.mu.Lock()
	f.removeCalls++
	hook := f.onRemove
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for i, r := range f.rows {
		if models.KeyOf(f.desc, r).Equal(key) {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeClient) calls() (list, create, update, remove int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.updateCalls, f.removeCalls
}

func (f *fakeClient) set(fn func(f *fakeClient)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func threeCars() []models.Record {
	return []models.Record{
		{"id": int64(1), "model": "Pride", "color": "white", "engineType": "gas", "productYear": int64(2010)},
		{"id": int64(2), "model": "Samand", "color": "black", "engineType": "gas", "productYear": int64(2015)},
		{"id": int64(3), "model": "Dena", "color": "red", "engineType": "hybrid", "productYear": nil},
	}
}
