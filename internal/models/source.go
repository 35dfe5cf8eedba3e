package models

import "time"

// Source kinds select which collector variant is used for a source.
// The kind is fixed when the source is created.
const (
	SourceKindRSS     = "rss"
	SourceKindScraper = "scraper"
	SourceKindAPI     = "api"
)

// Source is one configured external origin of news items.
type Source struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Country   string    `json:"country"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CollectionStatus is a snapshot of the collection manager's last sweep.
type CollectionStatus struct {
	Running      bool       `json:"running"`
	LastRun      *time.Time `json:"lastRun,omitempty"`
	LastSaved    int        `json:"lastSaved"`
	LastErrors   int        `json:"lastErrors"`
	SourcesSwept int        `json:"sourcesSwept"`
}
