package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/testutil"
)

type fakeGenerator struct {
	available bool
	response  string
	err       error
	calls     int
}

func (f *fakeGenerator) Available() bool { return f.available }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

func sampleArticles() []models.Article {
	return []models.Article{
		{ID: "a1", Title: "Tech story one", Category: "tech", Sentiment: models.SentimentPositive,
			Keywords: []string{"ai", "chips"}, Importance: 0.9},
		{ID: "a2", Title: "Tech story two", Category: "tech", Sentiment: models.SentimentNeutral,
			Keywords: []string{"ai"}, Importance: 0.4},
		{ID: "a3", Title: "Tech story three", Category: "tech", Sentiment: models.SentimentNeutral,
			Keywords: []string{"cloud"}, Importance: 0.6},
		{ID: "a4", Title: "Tech story four", Category: "tech", Sentiment: models.SentimentNegative,
			Keywords: []string{"ai"}, Importance: 0.1},
		{ID: "a5", Title: "Health story", Category: "health", Sentiment: models.SentimentNegative,
			Keywords: []string{"flu"}, Importance: 0.7},
	}
}

func TestBuildEmptyInput(t *testing.T) {
	b := NewBuilder(&fakeGenerator{available: true}, testutil.NullLogger())

	d := b.Build(context.Background(), nil)

	if len(d.Categories) != 0 || len(d.TrendingTopics) != 0 {
		t.Errorf("empty input should give empty digest, got %+v", d)
	}
	if d.Sentiment.Neutral != 100 || d.Sentiment.Positive != 0 || d.Sentiment.Negative != 0 {
		t.Errorf("empty digest sentiment = %+v, want 100%% neutral", d.Sentiment)
	}
	if d.Title == "" || d.Summary == "" {
		t.Error("empty digest should still carry a title and summary")
	}
}

func TestBuildLocalAggregation(t *testing.T) {
	b := NewBuilder(&fakeGenerator{available: false}, testutil.NullLogger())

	d := b.Build(context.Background(), sampleArticles())

	if len(d.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(d.Categories))
	}

	// Largest category first.
	tech := d.Categories[0]
	if tech.Name != "tech" || tech.Articles != 4 {
		t.Errorf("first category = %+v, want tech with 4 articles", tech)
	}
	if len(tech.Highlights) != 3 {
		t.Errorf("highlights capped at 3, got %d", len(tech.Highlights))
	}
	// Highlights ordered by importance.
	if tech.Highlights[0] != "Tech story one" {
		t.Errorf("top highlight = %q, want the most important article", tech.Highlights[0])
	}

	if d.Categories[1].Name != "health" || d.Categories[1].Articles != 1 {
		t.Errorf("second category = %+v", d.Categories[1])
	}

	// "ai" appears three times and must lead the trending list.
	if len(d.TrendingTopics) == 0 || d.TrendingTopics[0] != "ai" {
		t.Errorf("trendingTopics = %v, want ai first", d.TrendingTopics)
	}
}

func TestBuildSentimentRounding(t *testing.T) {
	// One of each: 33.3% per bucket, each rounded independently.
	articles := []models.Article{
		{ID: "a1", Title: "p", Sentiment: models.SentimentPositive},
		{ID: "a2", Title: "n", Sentiment: models.SentimentNegative},
		{ID: "a3", Title: "u", Sentiment: models.SentimentNeutral},
	}
	b := NewBuilder(&fakeGenerator{available: false}, testutil.NullLogger())

	d := b.Build(context.Background(), articles)

	if d.Sentiment.Positive != 33 || d.Sentiment.Negative != 33 || d.Sentiment.Neutral != 33 {
		t.Errorf("sentiment = %+v, want 33/33/33 (buckets need not sum to 100)", d.Sentiment)
	}
}

func TestBuildUnlabeledSentimentCountsNeutral(t *testing.T) {
	articles := []models.Article{
		{ID: "a1", Title: "x", Sentiment: ""},
		{ID: "a2", Title: "y", Sentiment: models.SentimentPositive},
	}
	b := NewBuilder(&fakeGenerator{available: false}, testutil.NullLogger())

	d := b.Build(context.Background(), articles)

	if d.Sentiment.Neutral != 50 || d.Sentiment.Positive != 50 {
		t.Errorf("sentiment = %+v, want 50/50", d.Sentiment)
	}
}

func TestBuildWithAIResponse(t *testing.T) {
	gen := &fakeGenerator{
		available: true,
		response: `{"title": "Morning Brief", "summary": "A busy day in tech.",
			"categories": [{"name": "tech", "articles": 4, "highlights": ["Tech story one"]}],
			"trendingTopics": ["ai"]}`,
	}
	b := NewBuilder(gen, testutil.NullLogger())

	d := b.Build(context.Background(), sampleArticles())

	if d.Title != "Morning Brief" || d.Summary != "A busy day in tech." {
		t.Errorf("AI digest not used: %+v", d)
	}
	// Sentiment always comes from the articles, never the model.
	if d.Sentiment.Neutral == 0 && d.Sentiment.Positive == 0 && d.Sentiment.Negative == 0 {
		t.Error("sentiment should be computed from articles")
	}
}

func TestBuildFallsBackOnAIError(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("quota exceeded")}
	b := NewBuilder(gen, testutil.NullLogger())

	d := b.Build(context.Background(), sampleArticles())

	if d.Title != "Daily News Digest" {
		t.Errorf("title = %q, want local aggregation", d.Title)
	}
	if len(d.Categories) != 2 {
		t.Errorf("local aggregation missing categories: %+v", d.Categories)
	}
}

func TestBuildFallsBackOnBadAIResponse(t *testing.T) {
	gen := &fakeGenerator{available: true, response: "not JSON"}
	b := NewBuilder(gen, testutil.NullLogger())

	d := b.Build(context.Background(), sampleArticles())

	if d.Title != "Daily News Digest" {
		t.Errorf("title = %q, want local aggregation", d.Title)
	}
}

func TestBuildDeterministicFallback(t *testing.T) {
	b := NewBuilder(&fakeGenerator{available: false}, testutil.NullLogger())

	d1 := b.Build(context.Background(), sampleArticles())
	d2 := b.Build(context.Background(), sampleArticles())

	if d1.Summary != d2.Summary || len(d1.Categories) != len(d2.Categories) {
		t.Error("local aggregation must be deterministic")
	}
	for i := range d1.TrendingTopics {
		if d1.TrendingTopics[i] != d2.TrendingTopics[i] {
			t.Fatalf("trending order differs between runs: %v vs %v", d1.TrendingTopics, d2.TrendingTopics)
		}
	}
}
