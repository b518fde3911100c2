package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sqliteMediaSchema = `
CREATE TABLE IF NOT EXISTS media (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    disk        TEXT NOT NULL,
    path        TEXT NOT NULL,
    media_type  TEXT NOT NULL,
    size        INTEGER NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);`

// SQLiteRepository persists media metadata in SQLite. Timestamps are stored as
// RFC 3339 text in UTC.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteMediaSchema); err != nil {
		return fmt.Errorf("migrate media: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Insert(ctx context.Context, m Media) (Media, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	now := r.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	stamp := now.Format(time.RFC3339Nano)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media (id, title, description, disk, path, media_type, size, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Title, m.Description, m.StorageBackend, m.StorageKey, m.MediaType, m.SizeBytes, stamp, stamp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Media{}, ErrDuplicateMedia
		}
		return Media{}, fmt.Errorf("insert media: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) Find(ctx context.Context, id uuid.UUID) (Media, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var (
		m                       Media
		rawID, created, updated string
		description             sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, disk, path, media_type, size, created_at, updated_at FROM media WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &m.Title, &description, &m.StorageBackend, &m.StorageKey, &m.MediaType, &m.SizeBytes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Media{}, ErrMediaNotFound
		}
		return Media{}, fmt.Errorf("find media: %w", err)
	}

	if m.ID, err = uuid.Parse(rawID); err != nil {
		return Media{}, fmt.Errorf("parse media id: %w", err)
	}
	if description.Valid {
		m.Description = &description.String
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Media{}, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Media{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return m, nil
}
