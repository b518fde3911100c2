package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

const postgresMediaSchema = `
CREATE TABLE IF NOT EXISTS media (
    id          UUID PRIMARY KEY,
    title       VARCHAR(255) NOT NULL,
    description TEXT,
    disk        TEXT NOT NULL,
    path        TEXT NOT NULL,
    media_type  TEXT NOT NULL,
    size        BIGINT NOT NULL CHECK (size >= 0),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// Repository persists media metadata in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the media table when it is missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresMediaSchema); err != nil {
		return fmt.Errorf("migrate media: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Insert stores a new record; the database assigns its timestamps.
func (r *Repository) Insert(ctx context.Context, m Media) (Media, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
INSERT INTO media (id, title, description, disk, path, media_type, size)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at;`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.StorageBackend, m.StorageKey, m.MediaType, m.SizeBytes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Media{}, ErrDuplicateMedia
		}
		return Media{}, fmt.Errorf("insert media: %w", err)
	}
	return m, nil
}

// Find fetches a record by id.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (Media, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
SELECT id, title, description, disk, path, media_type, size, created_at, updated_at
FROM media
WHERE id = $1;`

	var m Media
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.StorageBackend,
		&m.StorageKey,
		&m.MediaType,
		&m.SizeBytes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Media{}, ErrMediaNotFound
		}
		return Media{}, fmt.Errorf("find media: %w", err)
	}
	return m, nil
}
