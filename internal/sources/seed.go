package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newshub/newshub/internal/models"
)

// SeedSource is one entry in the sources config file.
type SeedSource struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Kind     string `json:"kind"` // "rss", "scraper", "api"
	Category string `json:"category"`
	Country  string `json:"country"`
	Active   bool   `json:"active"`
}

// SeedConfig holds the source seed configuration
type SeedConfig struct {
	Sources []SeedSource `json:"sources"`
}

// LoadSeedConfig loads source definitions from a JSON config file
func LoadSeedConfig(configPath string) (*SeedConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config: %w", err)
	}

	var config SeedConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	return &config, nil
}

// FindSeedConfig searches for sources.json in common locations
func FindSeedConfig() string {
	locations := []string{
		"sources.json",
		"./sources.json",
		"../sources.json",
		"/app/sources.json",
		"config/sources.json",
	}

	if envPath := os.Getenv("SOURCES_CONFIG_PATH"); envPath != "" {
		locations = append([]string{envPath}, locations...)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, _ := filepath.Abs(loc)
			return absPath
		}
	}

	return ""
}

// Models converts seed entries into source records ready for upserting.
func (c *SeedConfig) Models() []models.Source {
	out := make([]models.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, models.Source{
			Name:     s.Name,
			URL:      s.URL,
			Kind:     s.Kind,
			Category: s.Category,
			Country:  s.Country,
			Active:   s.Active,
		})
	}
	return out
}

// DefaultSeedConfig returns the built-in source list used when no config
// file is found.
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Sources: []SeedSource{
			// RSS feeds
			{Name: "Google News", URL: "https://news.google.com/rss", Kind: "rss", Category: "general", Country: "US", Active: true},
			{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/rss.xml", Kind: "rss", Category: "general", Country: "UK", Active: true},
			{Name: "CNN News", URL: "http://rss.cnn.com/rss/edition.rss", Kind: "rss", Category: "general", Country: "US", Active: true},
			// Scraped pages
			{Name: "Hacker News Front", URL: "https://news.ycombinator.com/", Kind: "scraper", Category: "tech", Country: "US", Active: true},
			{Name: "Zhihu Hot", URL: "https://www.zhihu.com/hot", Kind: "scraper", Category: "social", Country: "CN", Active: true},
			{Name: "Sina News", URL: "https://news.sina.com.cn/", Kind: "scraper", Category: "general", Country: "CN", Active: true},
			// API placeholders until real integrations exist
			{Name: "X/Twitter Trending", URL: "https://api.twitter.com/2/trends", Kind: "api", Category: "social", Country: "US", Active: true},
			{Name: "Reddit Trending", URL: "https://www.reddit.com/hot.json", Kind: "api", Category: "social", Country: "US", Active: true},
		},
	}
}
