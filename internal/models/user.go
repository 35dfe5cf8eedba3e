package models

import "time"

// User is a digest recipient. Authentication lives outside this service;
// only the fields the fan-out needs are modeled here.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`

	Prefs *DigestPrefs `json:"prefs,omitempty"`
}

// DigestPrefs holds one user's digest filtering preferences.
// An empty filter list means "no restriction", never "match nothing".
type DigestPrefs struct {
	UserID          string   `json:"userId"`
	SelectedSources []string `json:"selectedSources"`
	Categories      []string `json:"categoriesFilter"`
	Keywords        []string `json:"keywordsFilter"`
	PushFrequency   string   `json:"pushFrequency"`
	Active          bool     `json:"active"`
}

// EmailLog records one sent digest. Rows are append-only.
type EmailLog struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sentAt"`
	Opened  bool      `json:"opened"`
	Clicked bool      `json:"clicked"`
}

// EmailStats summarizes a user's recent digest deliveries.
type EmailStats struct {
	Total   int        `json:"total"`
	Opened  int        `json:"opened"`
	Clicked int        `json:"clicked"`
	Recent  []EmailLog `json:"recent"`
}
