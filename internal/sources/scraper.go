package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/ratelimit"
)

// ExtractionRule maps page structure to item fields for one known site.
type ExtractionRule struct {
	Container string
	Title     string
	Link      string
	Summary   string
}

// extractionRules holds document-query rules for sources we scrape
// regularly, keyed by source name. Sources without an entry fall back to
// the generic heuristic rule.
var extractionRules = map[string]ExtractionRule{
	"Hacker News Front": {
		Container: ".athing",
		Title:     ".titleline > a",
		Link:      ".titleline > a",
	},
	"Zhihu Hot": {
		Container: ".HotList-item",
		Title:     ".HotList-itemTitle",
		Link:      "a",
		Summary:   ".HotList-itemExcerpt",
	},
	"Sina News": {
		Container: ".news-item",
		Title:     "h1, .title",
		Link:      "a",
		Summary:   ".summary, .content",
	},
}

// genericRule is the heuristic applied to unknown pages: article-like
// blocks, first heading, first link.
var genericRule = ExtractionRule{
	Container: "article, .news-article, .post, .item",
	Title:     "h1, h2, h3, .title, .headline",
	Link:      "a",
	Summary:   ".content, .summary, .excerpt",
}

// ScraperCollector extracts items from an HTML page using a
// source-specific extraction rule.
type ScraperCollector struct {
	source  models.Source
	rule    ExtractionRule
	limiter *ratelimit.Limiter
	config  Config
	client  *http.Client
}

func NewScraperCollector(source models.Source, limiter *ratelimit.Limiter, config Config) *ScraperCollector {
	rule, ok := extractionRules[source.Name]
	if !ok {
		rule = genericRule
	}

	return &ScraperCollector{
		source:  source,
		rule:    rule,
		limiter: limiter,
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

func (c *ScraperCollector) Kind() string {
	return models.SourceKindScraper
}

func (c *ScraperCollector) Collect(ctx context.Context) ([]models.RawItem, error) {
	c.limiter.Wait(c.source.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", c.source.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %s returned status %d", c.source.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := make([]models.RawItem, 0)
	doc.Find(c.rule.Container).Each(func(i int, s *goquery.Selection) {
		if len(items) >= c.config.MaxItems {
			return
		}

		title := cleanText(s.Find(c.rule.Title).First().Text())
		link, _ := s.Find(c.rule.Link).First().Attr("href")
		if title == "" || link == "" {
			return
		}
		link = c.resolveURL(link)
		if link == "" {
			return
		}

		summary := ""
		if c.rule.Summary != "" {
			summary = cleanText(s.Find(c.rule.Summary).First().Text())
		}

		items = append(items, models.RawItem{
			Title:    title,
			Content:  summary,
			URL:      link,
			Category: c.source.Category,
			Tags:     []string{c.source.Name},
		})
	})

	return items, nil
}

func (c *ScraperCollector) resolveURL(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base, err := url.Parse(c.source.URL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
