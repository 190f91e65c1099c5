package records

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/models"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	rows, err := repo.List(ctx, "cars")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, repo.Insert(ctx, "cars", "1", models.Row{"id": int64(1), "model": "Pride"}))
	require.NoError(t, repo.Insert(ctx, "cars", "2", models.Row{"id": int64(2), "model": "Samand"}))
	require.NoError(t, repo.Insert(ctx, "cars", "3", models.Row{"id": int64(3), "model": "Dena"}))

	err = repo.Insert(ctx, "cars", "2", models.Row{"id": int64(2)})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.Get(ctx, "cars", "2")
	require.NoError(t, err)
	assert.Equal(t, "Samand", got["model"])

	require.NoError(t, repo.Update(ctx, "cars", "2", models.Row{"id": int64(2), "model": "Runna"}))
	require.NoError(t, repo.Delete(ctx, "cars", "1"))

	rows, err = repo.List(ctx, "cars")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Runna", rows[0]["model"])
	assert.Equal(t, "Dena", rows[1]["model"])
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "cars", "1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "cars", "1", models.Row{}), common.ErrorNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "cars", "1"), common.ErrorNotFound)

	require.NoError(t, repo.Insert(ctx, "cars", "1", models.Row{}))
	require.NoError(t, repo.Delete(ctx, "cars", "1"))
	assert.ErrorIs(t, repo.Delete(ctx, "cars", "1"), common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	in := models.Row{"model": "Pride"}
	require.NoError(t, repo.Insert(ctx, "cars", "1", in))
	in["model"] = "changed"

	got, err := repo.Get(ctx, "cars", "1")
	require.NoError(t, err)
	got["model"] = "changed again"

	rows, err := repo.List(ctx, "cars")
	require.NoError(t, err)
	assert.Equal(t, "Pride", rows[0]["model"])
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_ = repo.Insert(ctx, "t", key, models.Row{"k": key})
			_, _ = repo.List(ctx, "t")
			_ = repo.Delete(ctx, "t", key)
		}()
	}
	wg.Wait()
}
