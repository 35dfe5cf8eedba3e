package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newshub/newshub/internal/models"
)

// ErrSourceNotFound is returned when a source id does not exist.
var ErrSourceNotFound = errors.New("source not found")

// SourceStore persists configured news sources in Postgres.
type SourceStore struct {
	db *DB
}

func NewSourceStore(db *DB) *SourceStore {
	return &SourceStore{db: db}
}

// Upsert inserts a source or updates its metadata, keyed by the unique URL.
// The collector kind is fixed at creation and never overwritten.
func (s *SourceStore) Upsert(ctx context.Context, src models.Source) (*models.Source, error) {
	query := `
		INSERT INTO news_sources (name, url, kind, category, country, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			country = EXCLUDED.country,
			updated_at = NOW()
		RETURNING id, name, url, kind, category, country, active, created_at, updated_at
	`

	out := &models.Source{}
	err := s.db.QueryRowContext(ctx, query,
		src.Name, src.URL, src.Kind, src.Category, src.Country, src.Active,
	).Scan(
		&out.ID, &out.Name, &out.URL, &out.Kind, &out.Category,
		&out.Country, &out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert source %s: %w", src.URL, err)
	}

	return out, nil
}

// GetByID retrieves a source by id.
func (s *SourceStore) GetByID(ctx context.Context, id string) (*models.Source, error) {
	query := `
		SELECT id, name, url, kind, category, country, active, created_at, updated_at
		FROM news_sources
		WHERE id = $1
	`

	out := &models.Source{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&out.ID, &out.Name, &out.URL, &out.Kind, &out.Category,
		&out.Country, &out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}

	return out, nil
}

// ListActive returns all sources with active=true.
func (s *SourceStore) ListActive(ctx context.Context) ([]models.Source, error) {
	query := `
		SELECT id, name, url, kind, category, country, active, created_at, updated_at
		FROM news_sources
		WHERE active = true
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	defer rows.Close()

	sources := make([]models.Source, 0)
	for rows.Next() {
		var src models.Source
		if err := rows.Scan(
			&src.ID, &src.Name, &src.URL, &src.Kind, &src.Category,
			&src.Country, &src.Active, &src.CreatedAt, &src.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return sources, nil
}

// SetActive toggles collection for a source.
func (s *SourceStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE news_sources SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set source active: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrSourceNotFound
	}
	return nil
}
