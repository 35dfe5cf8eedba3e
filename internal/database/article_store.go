package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/newshub/newshub/internal/models"
)

// ErrArticleNotFound is returned when an article id does not exist.
var ErrArticleNotFound = errors.New("article not found")

// ArticleStore persists deduplicated news articles in Postgres.
type ArticleStore struct {
	db *DB
}

func NewArticleStore(db *DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// InsertIfAbsent inserts an article unless a row with the same content hash
// already exists. A duplicate hash is not an error: the second writer loses
// silently and inserted is false.
func (s *ArticleStore) InsertIfAbsent(ctx context.Context, a models.Article) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO news_articles (
			id, source_id, title, url, content, author,
			published_at, content_hash, category, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (content_hash) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		a.ID, a.SourceID, a.Title, a.URL,
		nullString(a.Content), nullString(a.Author),
		a.PublishedAt, a.ContentHash, nullString(a.Category),
	)
	if err != nil {
		return false, fmt.Errorf("insert article %s: %w", a.URL, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert article rows affected: %w", err)
	}
	return rows == 1, nil
}

// UpdateAnnotation attaches AI-derived fields to an existing article.
// Articles are updated in place, never re-created.
func (s *ArticleStore) UpdateAnnotation(ctx context.Context, id string, ann models.Annotation) error {
	keywords := ann.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	query := `
		UPDATE news_articles SET
			summary = $2,
			category = $3,
			sentiment = $4,
			keywords = $5,
			importance = $6,
			reading_time = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		id, ann.Summary, ann.Category, ann.Sentiment,
		pq.Array(keywords), ann.Importance, ann.ReadingTime,
	)
	if err != nil {
		return fmt.Errorf("update annotation %s: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// ListUnannotated returns articles published after since that have no
// summary yet, oldest first, capped at limit.
func (s *ArticleStore) ListUnannotated(ctx context.Context, since time.Time, limit int) ([]models.Article, error) {
	query := selectArticle + `
		WHERE published_at >= $1 AND summary IS NULL
		ORDER BY published_at ASC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list unannotated articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// ListAnnotatedSince returns annotated articles published within the
// lookback window, newest first.
func (s *ArticleStore) ListAnnotatedSince(ctx context.Context, since time.Time) ([]models.Article, error) {
	query := selectArticle + `
		WHERE published_at >= $1 AND summary IS NOT NULL
		ORDER BY published_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list annotated articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// CountAll returns the total number of stored articles.
func (s *ArticleStore) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes articles created before cutoff. The content hash
// uniqueness constraint survives the sweep because the hash column moves
// with the row.
func (s *ArticleStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM news_articles WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

const selectArticle = `
	SELECT
		id, source_id, title, url, content, author,
		published_at, content_hash,
		summary, category, sentiment, keywords, importance, reading_time,
		created_at, updated_at
	FROM news_articles
`

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	for rows.Next() {
		var a models.Article
		var content, author, summary, category, sentiment sql.NullString
		var keywords pq.StringArray
		var importance sql.NullFloat64
		var readingTime sql.NullInt64

		if err := rows.Scan(
			&a.ID, &a.SourceID, &a.Title, &a.URL, &content, &author,
			&a.PublishedAt, &a.ContentHash,
			&summary, &category, &sentiment, &keywords, &importance, &readingTime,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		if content.Valid {
			a.Content = content.String
		}
		if author.Valid {
			a.Author = author.String
		}
		if summary.Valid {
			a.Summary = summary.String
		}
		if category.Valid {
			a.Category = category.String
		}
		if sentiment.Valid {
			a.Sentiment = sentiment.String
		}
		if importance.Valid {
			a.Importance = importance.Float64
		}
		if readingTime.Valid {
			a.ReadingTime = int(readingTime.Int64)
		}

		a.Keywords = []string(keywords)
		if a.Keywords == nil {
			a.Keywords = []string{}
		}

		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}
