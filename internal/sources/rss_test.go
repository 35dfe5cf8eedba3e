package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/ratelimit"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <link>https://example.com</link>
  <item>
    <title>First   Article</title>
    <link>https://example.com/first</link>
    <description>Something happened.</description>
    <author>Jane Doe</author>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    <category>world</category>
  </item>
  <item>
    <title>Second Article</title>
    <link>https://example.com/second</link>
  </item>
  <item>
    <title></title>
    <link>https://example.com/untitled</link>
  </item>
  <item>
    <title>No Link Article</title>
  </item>
</channel>
</rss>`

func newRSSTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSCollect(t *testing.T) {
	srv := newRSSTestServer(t, testFeed)

	source := models.Source{ID: "s1", Name: "Test Feed", URL: srv.URL, Kind: models.SourceKindRSS, Category: "general"}
	c := NewRSSCollector(source, ratelimit.New(0), DefaultConfig())

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	// Entries without title or link are dropped.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Title != "First Article" {
		t.Errorf("title = %q, want whitespace-collapsed %q", first.Title, "First Article")
	}
	if first.URL != "https://example.com/first" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Content != "Something happened." {
		t.Errorf("content = %q", first.Content)
	}
	if first.PublishedAt == nil {
		t.Error("publishedAt should be parsed")
	}
	if first.Category != "general" {
		t.Errorf("category = %q, want source category", first.Category)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "world" {
		t.Errorf("tags = %v, want [world]", first.Tags)
	}

	if items[1].PublishedAt != nil {
		t.Error("entry without pubDate should have nil publishedAt")
	}
}

func TestRSSCollectRespectsMaxItems(t *testing.T) {
	srv := newRSSTestServer(t, testFeed)

	config := DefaultConfig()
	config.MaxItems = 1

	source := models.Source{ID: "s1", Name: "Test Feed", URL: srv.URL, Kind: models.SourceKindRSS}
	c := NewRSSCollector(source, ratelimit.New(0), config)

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1", len(items))
	}
}

func TestRSSCollectBadFeed(t *testing.T) {
	srv := newRSSTestServer(t, "this is not XML")

	source := models.Source{ID: "s1", Name: "Broken", URL: srv.URL, Kind: models.SourceKindRSS}
	c := NewRSSCollector(source, ratelimit.New(0), DefaultConfig())

	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("Collect should fail on unparseable feed")
	}
}

func TestRSSCollectServerDown(t *testing.T) {
	srv := newRSSTestServer(t, testFeed)
	url := srv.URL
	srv.Close()

	config := DefaultConfig()
	config.Timeout = 2 * time.Second

	source := models.Source{ID: "s1", Name: "Gone", URL: url, Kind: models.SourceKindRSS}
	c := NewRSSCollector(source, ratelimit.New(0), config)

	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("Collect should fail when the server is unreachable")
	}
}
