package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/newshub/newshub/internal/models"
)

// EmailLogStore records sent digests. Rows are append-only; only the
// retention sweep deletes them.
type EmailLogStore struct {
	db *DB
}

func NewEmailLogStore(db *DB) *EmailLogStore {
	return &EmailLogStore{db: db}
}

// Insert appends one row for a successfully sent digest.
func (s *EmailLogStore) Insert(ctx context.Context, userID, subject string) (*models.EmailLog, error) {
	log := &models.EmailLog{
		ID:      uuid.NewString(),
		UserID:  userID,
		Subject: subject,
	}

	query := `
		INSERT INTO email_logs (id, user_id, subject)
		VALUES ($1, $2, $3)
		RETURNING sent_at, opened, clicked
	`

	err := s.db.QueryRowContext(ctx, query, log.ID, log.UserID, log.Subject).
		Scan(&log.SentAt, &log.Opened, &log.Clicked)
	if err != nil {
		return nil, fmt.Errorf("insert email log for %s: %w", userID, err)
	}

	return log, nil
}

// Stats summarizes a user's deliveries since the given time.
func (s *EmailLogStore) Stats(ctx context.Context, userID string, since time.Time) (*models.EmailStats, error) {
	stats := &models.EmailStats{Recent: make([]models.EmailLog, 0)}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE opened),
			COUNT(*) FILTER (WHERE clicked)
		FROM email_logs
		WHERE user_id = $1 AND sent_at >= $2
	`
	if err := s.db.QueryRowContext(ctx, query, userID, since).
		Scan(&stats.Total, &stats.Opened, &stats.Clicked); err != nil {
		return nil, fmt.Errorf("email stats for %s: %w", userID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subject, sent_at, opened, clicked
		FROM email_logs
		WHERE user_id = $1 AND sent_at >= $2
		ORDER BY sent_at DESC
		LIMIT 10
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("recent email logs for %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var log models.EmailLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Subject, &log.SentAt, &log.Opened, &log.Clicked); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		stats.Recent = append(stats.Recent, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email logs: %w", err)
	}

	return stats, nil
}

// CountForUserSince returns how many digests were sent to a user since the
// given time.
func (s *EmailLogStore) CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_logs WHERE user_id = $1 AND sent_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count email logs for %s: %w", userID, err)
	}
	return count, nil
}

// DeleteOlderThan removes logs sent before cutoff.
func (s *EmailLogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_logs WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old email logs: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}
