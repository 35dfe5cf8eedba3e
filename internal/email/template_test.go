package email

import (
	"strings"
	"testing"
	"time"

	"github.com/newshub/newshub/internal/models"
)

func sampleDigest() models.Digest {
	return models.Digest{
		Title:   "Daily News Digest",
		Summary: "Today's digest covers 5 articles across 2 categories.",
		Categories: []models.DigestCategory{
			{Name: "tech", Articles: 4, Highlights: []string{"Chips & <scripts>", "Cloud news"}},
			{Name: "health", Articles: 1, Highlights: []string{"Flu season"}},
		},
		TrendingTopics: []string{"ai", "flu"},
		Sentiment:      models.SentimentMix{Positive: 40, Negative: 20, Neutral: 40},
	}
}

func TestRenderDigest(t *testing.T) {
	date := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)

	html, text, err := RenderDigest(sampleDigest(), "Ada", date)
	if err != nil {
		t.Fatalf("RenderDigest failed: %v", err)
	}

	for _, want := range []string{
		"Daily News Digest",
		"Hi Ada,",
		"tech",
		"Cloud news",
		"Flu season",
		"ai",
		"40% positive",
		"Sunday, August 30, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	// html/template must escape markup in article titles.
	if strings.Contains(html, "<scripts>") {
		t.Error("HTML output should escape angle brackets in highlights")
	}
	if !strings.Contains(html, "Chips &amp; &lt;scripts&gt;") {
		t.Error("escaped highlight missing from HTML")
	}

	for _, want := range []string{
		"Daily News Digest",
		"Hi Ada,",
		"TECH (4 articles)",
		"- Cloud news",
		"Trending: ai, flu",
		"40% positive, 40% neutral, 20% negative",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestRenderDigestWithoutRecipientName(t *testing.T) {
	html, text, err := RenderDigest(sampleDigest(), "", time.Now())
	if err != nil {
		t.Fatalf("RenderDigest failed: %v", err)
	}
	if strings.Contains(html, "Hi ,") || strings.Contains(text, "Hi ,") {
		t.Error("greeting should be omitted for anonymous recipients")
	}
}

func TestDigestSubject(t *testing.T) {
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	got := DigestSubject(date)
	if !strings.Contains(got, "Aug 30, 2026") {
		t.Errorf("subject = %q, want the date in it", got)
	}
}
