package sources

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/ratelimit"
)

// Collector fetches raw items from one external source. Implementations
// fail soft: network and parse errors surface through the returned error
// and never panic past this boundary.
type Collector interface {
	Kind() string
	Collect(ctx context.Context) ([]models.RawItem, error)
}

// Config carries shared collector settings.
type Config struct {
	Timeout   time.Duration
	MaxItems  int
	UserAgent string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		MaxItems:  50,
		UserAgent: "NewsHub/1.0 (+https://newshub.example.com)",
	}
}

// New constructs the collector variant matching the source's kind.
func New(source models.Source, limiter *ratelimit.Limiter, config Config) (Collector, error) {
	switch source.Kind {
	case models.SourceKindRSS:
		return NewRSSCollector(source, limiter, config), nil
	case models.SourceKindScraper:
		return NewScraperCollector(source, limiter, config), nil
	case models.SourceKindAPI:
		return NewAPICollector(source), nil
	default:
		return nil, fmt.Errorf("unknown collector kind %q for source %s", source.Kind, source.Name)
	}
}

// cleanText normalizes unicode, collapses runs of whitespace, and strips
// control characters from text pulled out of feeds and pages.
func cleanText(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
