package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

func TestMemoryFormRepository_GetCreatesEmptyForm(t *testing.T) {
	repo := NewMemoryFormRepository()
	form, err := repo.Get(context.Background(), "tg:1")
	require.NoError(t, err)
	require.Equal(t, entity.StatusIdle, form.Status)
	require.Equal(t, 0, repo.Len())
}

func TestMemoryFormRepository_SaveIsolatesCopies(t *testing.T) {
	repo := NewMemoryFormRepository()
	ctx := context.Background()

	form := entity.NewForm("web:a")
	form.Status = entity.StatusLoading
	require.NoError(t, repo.Save(ctx, form))

	// Изменения после Save не видны в хранилище
	form.Status = entity.StatusIdle

	got, err := repo.Get(ctx, "web:a")
	require.NoError(t, err)
	require.Equal(t, entity.StatusLoading, got.Status)

	require.NoError(t, repo.Delete(ctx, "web:a"))
	require.Equal(t, 0, repo.Len())
}

func TestMemoryPreviewStore_AcquireGetRelease(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()

	id, err := store.Acquire(ctx, []byte("jpeg"), entity.OutputMediaType)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, mt, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg"), data)
	require.Equal(t, "image/jpeg", mt)

	require.NoError(t, store.Release(ctx, id))
	require.NoError(t, store.Release(ctx, id))
	_, _, err = store.Get(ctx, id)
	require.ErrorIs(t, err, port.ErrPreviewNotFound)
	require.Equal(t, 0, store.Len())
}
