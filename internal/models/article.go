package models

import "time"

// RawItem is an unvalidated candidate article fetched from a source.
// It only exists in memory between collection and persistence.
type RawItem struct {
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	URL         string     `json:"url"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
}

// Article is a deduplicated, persisted news item. Annotation fields stay
// empty until the AI sweep has processed the row.
type Article struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"sourceId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	ContentHash string    `json:"-"`

	Summary     string   `json:"summary,omitempty"`
	Category    string   `json:"category,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty"`
	Keywords    []string `json:"keywords"`
	Importance  float64  `json:"importance,omitempty"`
	ReadingTime int      `json:"readingTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Annotated reports whether the AI sweep has processed this article.
func (a *Article) Annotated() bool {
	return a.Summary != ""
}

// Sentiment labels produced by the annotator.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Annotation holds the AI-derived fields attached to an article.
type Annotation struct {
	Summary     string   `json:"summary"`
	Category    string   `json:"category"`
	Sentiment   string   `json:"sentiment"`
	Keywords    []string `json:"keywords"`
	Importance  float64  `json:"importanceScore"`
	ReadingTime int      `json:"readingTime"`
}
