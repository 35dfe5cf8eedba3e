package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/newshub/newshub/internal/models"
)

func TestLoadSeedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")

	content := `{
		"sources": [
			{"name": "Example Feed", "url": "https://example.com/rss", "kind": "rss", "category": "tech", "country": "US", "active": true}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadSeedConfig(path)
	if err != nil {
		t.Fatalf("LoadSeedConfig failed: %v", err)
	}
	if len(config.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(config.Sources))
	}
	if config.Sources[0].Name != "Example Feed" || config.Sources[0].Kind != "rss" {
		t.Errorf("unexpected source: %+v", config.Sources[0])
	}
}

func TestLoadSeedConfigMissingFile(t *testing.T) {
	if _, err := LoadSeedConfig("/nonexistent/sources.json"); err == nil {
		t.Error("LoadSeedConfig should fail for missing file")
	}
}

func TestLoadSeedConfigBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadSeedConfig(path); err == nil {
		t.Error("LoadSeedConfig should fail on invalid JSON")
	}
}

func TestDefaultSeedConfig(t *testing.T) {
	config := DefaultSeedConfig()
	if len(config.Sources) == 0 {
		t.Fatal("default seed config should not be empty")
	}

	kinds := map[string]bool{}
	for _, s := range config.Sources {
		switch s.Kind {
		case models.SourceKindRSS, models.SourceKindScraper, models.SourceKindAPI:
		default:
			t.Errorf("source %s has unknown kind %q", s.Name, s.Kind)
		}
		kinds[s.Kind] = true
		if s.URL == "" || s.Name == "" {
			t.Errorf("source with empty name or url: %+v", s)
		}
	}

	// All three collector kinds should be represented.
	if len(kinds) != 3 {
		t.Errorf("default sources cover kinds %v, want all three", kinds)
	}
}

func TestSeedConfigModels(t *testing.T) {
	config := &SeedConfig{Sources: []SeedSource{
		{Name: "A", URL: "https://a.example.com", Kind: "rss", Category: "tech", Country: "US", Active: true},
	}}

	out := config.Models()
	if len(out) != 1 {
		t.Fatalf("got %d models, want 1", len(out))
	}
	want := models.Source{Name: "A", URL: "https://a.example.com", Kind: "rss", Category: "tech", Country: "US", Active: true}
	if out[0] != want {
		t.Errorf("got %+v, want %+v", out[0], want)
	}
}
