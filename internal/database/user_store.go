package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/newshub/newshub/internal/models"
)

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserStore handles digest recipient database operations.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user. Used by seeding and tests; registration proper
// lives in the web layer.
func (s *UserStore) Create(ctx context.Context, email, name string, verified bool) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	query := `
		INSERT INTO users (email, name, email_verified)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, email_verified, created_at
	`

	user := &models.User{}
	var dbName sql.NullString
	err := s.db.QueryRowContext(ctx, query, email, nullString(name), verified).Scan(
		&user.ID, &user.Email, &dbName, &user.EmailVerified, &user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("user with email %s already exists", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if dbName.Valid {
		user.Name = dbName.String
	}

	return user, nil
}

// GetWithPrefs retrieves a user together with their digest preferences.
// A user without a prefs row gets nil Prefs.
func (s *UserStore) GetWithPrefs(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT
			u.id, u.email, u.name, u.email_verified, u.created_at,
			p.selected_sources, p.categories_filter, p.keywords_filter,
			p.push_frequency, p.active
		FROM users u
		LEFT JOIN user_digest_prefs p ON p.user_id = u.id
		WHERE u.id = $1
	`

	user := &models.User{}
	var name sql.NullString
	var selected, categories, keywords pq.StringArray
	var frequency sql.NullString
	var active sql.NullBool

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &name, &user.EmailVerified, &user.CreatedAt,
		&selected, &categories, &keywords, &frequency, &active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	if name.Valid {
		user.Name = name.String
	}
	if frequency.Valid {
		user.Prefs = &models.DigestPrefs{
			UserID:          user.ID,
			SelectedSources: emptyIfNil(selected),
			Categories:      emptyIfNil(categories),
			Keywords:        emptyIfNil(keywords),
			PushFrequency:   frequency.String,
			Active:          active.Valid && active.Bool,
		}
	}

	return user, nil
}

// UpsertPrefs creates or replaces a user's digest preferences.
func (s *UserStore) UpsertPrefs(ctx context.Context, prefs models.DigestPrefs) error {
	query := `
		INSERT INTO user_digest_prefs (
			user_id, selected_sources, categories_filter, keywords_filter,
			push_frequency, active
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			selected_sources = EXCLUDED.selected_sources,
			categories_filter = EXCLUDED.categories_filter,
			keywords_filter = EXCLUDED.keywords_filter,
			push_frequency = EXCLUDED.push_frequency,
			active = EXCLUDED.active,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		prefs.UserID,
		pq.Array(emptyIfNil(prefs.SelectedSources)),
		pq.Array(emptyIfNil(prefs.Categories)),
		pq.Array(emptyIfNil(prefs.Keywords)),
		prefs.PushFrequency,
		prefs.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert digest prefs for %s: %w", prefs.UserID, err)
	}
	return nil
}

// ListDigestRecipients returns verified users whose prefs are active with
// the given push frequency, prefs included.
func (s *UserStore) ListDigestRecipients(ctx context.Context, frequency string) ([]models.User, error) {
	query := `
		SELECT
			u.id, u.email, u.name, u.email_verified, u.created_at,
			p.selected_sources, p.categories_filter, p.keywords_filter,
			p.push_frequency, p.active
		FROM users u
		JOIN user_digest_prefs p ON p.user_id = u.id
		WHERE u.email_verified = true AND p.active = true AND p.push_frequency = $1
		ORDER BY u.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, frequency)
	if err != nil {
		return nil, fmt.Errorf("list digest recipients: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		var name sql.NullString
		var selected, categories, keywords pq.StringArray
		var freq string
		var active bool

		if err := rows.Scan(
			&user.ID, &user.Email, &name, &user.EmailVerified, &user.CreatedAt,
			&selected, &categories, &keywords, &freq, &active,
		); err != nil {
			return nil, fmt.Errorf("scan digest recipient: %w", err)
		}

		if name.Valid {
			user.Name = name.String
		}
		user.Prefs = &models.DigestPrefs{
			UserID:          user.ID,
			SelectedSources: emptyIfNil(selected),
			Categories:      emptyIfNil(categories),
			Keywords:        emptyIfNil(keywords),
			PushFrequency:   freq,
			Active:          active,
		}

		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digest recipients: %w", err)
	}

	return users, nil
}

func emptyIfNil(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}
