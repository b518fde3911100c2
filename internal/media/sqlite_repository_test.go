package media

import (
	"context"
	"testing"
	"time"

	"github.com/abduss/mediadrop/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteMediaRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLiteRepositoryInsertAndFind(t *testing.T) {
	repo := newSQLiteMediaRepo(t)
	fixed := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	stored, err := repo.Insert(ctx, Media{
		ID:             id,
		Title:          "Clip",
		Description:    strPtr("A short clip"),
		StorageBackend: "public",
		StorageKey:     "media/abc.mp4",
		MediaType:      "video/mp4",
		SizeBytes:      1048576,
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, stored.CreatedAt)
	assert.Equal(t, fixed, stored.UpdatedAt)

	found, err := repo.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, stored, found)
	require.NoError(t, repo.Ping(ctx))
}

func TestSQLiteRepositoryNullDescriptionAndErrors(t *testing.T) {
	repo := newSQLiteMediaRepo(t)
	ctx := context.Background()

	record := Media{
		ID:             uuid.New(),
		Title:          "Photo",
		StorageBackend: "public",
		StorageKey:     "media/abc.jpg",
		MediaType:      "image/jpeg",
		SizeBytes:      10,
	}
	_, err := repo.Insert(ctx, record)
	require.NoError(t, err)

	found, err := repo.Find(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Description)

	_, err = repo.Insert(ctx, record)
	assert.ErrorIs(t, err, ErrDuplicateMedia)

	_, err = repo.Find(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMediaNotFound)
}
