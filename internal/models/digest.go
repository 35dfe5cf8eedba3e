package models

// Digest is an aggregated view over a set of annotated articles,
// rendered into one email.
type Digest struct {
	Title          string           `json:"title"`
	Summary        string           `json:"summary"`
	Categories     []DigestCategory `json:"categories"`
	TrendingTopics []string         `json:"trendingTopics"`
	Sentiment      SentimentMix     `json:"sentiment"`
}

// DigestCategory groups articles of one category inside a digest.
type DigestCategory struct {
	Name       string   `json:"name"`
	Articles   int      `json:"articles"`
	Highlights []string `json:"highlights"`
}

// SentimentMix holds per-label percentages. Each bucket is rounded
// independently, so the three values need not sum to exactly 100.
type SentimentMix struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}
