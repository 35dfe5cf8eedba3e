package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/ratelimit"
)

// RSSCollector parses an RSS/Atom feed into raw items.
type RSSCollector struct {
	source  models.Source
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	config  Config
}

func NewRSSCollector(source models.Source, limiter *ratelimit.Limiter, config Config) *RSSCollector {
	parser := gofeed.NewParser()
	parser.UserAgent = config.UserAgent
	parser.Client = &http.Client{Timeout: config.Timeout}

	return &RSSCollector{
		source:  source,
		parser:  parser,
		limiter: limiter,
		config:  config,
	}
}

func (c *RSSCollector) Kind() string {
	return models.SourceKindRSS
}

func (c *RSSCollector) Collect(ctx context.Context) ([]models.RawItem, error) {
	c.limiter.Wait(c.source.URL)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	feed, err := c.parser.ParseURLWithContext(c.source.URL, ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", c.source.URL, err)
	}

	items := make([]models.RawItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		if i >= c.config.MaxItems {
			break
		}

		title := cleanText(entry.Title)
		link := entry.Link

		// Entries without both title and link carry nothing worth keeping.
		if title == "" || link == "" {
			continue
		}

		author := ""
		if entry.Author != nil {
			author = cleanText(entry.Author.Name)
		}

		var publishedAt *time.Time
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			publishedAt = entry.UpdatedParsed
		}

		items = append(items, models.RawItem{
			Title:       title,
			Content:     cleanText(entry.Description),
			URL:         link,
			Author:      author,
			PublishedAt: publishedAt,
			Category:    c.source.Category,
			Tags:        append([]string{}, entry.Categories...),
		})
	}

	return items, nil
}
