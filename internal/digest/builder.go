package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/newshub/newshub/internal/ai"
	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/models"
)

// maxPromptArticles caps how many articles are fed into the AI digest
// prompt. The most important articles win the slots.
const maxPromptArticles = 20

// Builder aggregates annotated articles into a digest. The AI path writes
// the narrative summary; when it is unavailable or fails, the local
// aggregation produces a digest from the same inputs deterministically.
type Builder struct {
	generator ai.Generator
	logger    *logging.Logger
}

func NewBuilder(generator ai.Generator, logger *logging.Logger) *Builder {
	return &Builder{generator: generator, logger: logger}
}

// Build produces a digest over the given articles. It never fails; AI
// errors degrade to the local aggregation.
func (b *Builder) Build(ctx context.Context, articles []models.Article) models.Digest {
	if len(articles) == 0 {
		return emptyDigest()
	}

	if b.generator.Available() {
		if d, err := b.buildWithAI(ctx, articles); err == nil {
			return d
		} else {
			b.logger.Warn("AI digest failed, using local aggregation",
				logging.WithField("reason", ai.ClassifyFailure(err)),
				logging.WithField("error", err.Error()))
		}
	}

	return buildLocal(articles)
}

func (b *Builder) buildWithAI(ctx context.Context, articles []models.Article) (models.Digest, error) {
	prompt := digestPrompt(topByImportance(articles, maxPromptArticles))

	raw, err := b.generator.Generate(ctx, prompt)
	if err != nil {
		return models.Digest{}, err
	}

	obj := ai.ExtractJSON(raw)
	if obj == "" {
		return models.Digest{}, fmt.Errorf("no JSON object in digest response")
	}

	var d models.Digest
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return models.Digest{}, fmt.Errorf("failed to parse digest JSON: %w", err)
	}
	if d.Title == "" || d.Summary == "" {
		return models.Digest{}, fmt.Errorf("digest response missing title or summary")
	}

	// Counts and sentiment come from the articles themselves, not the
	// model, so the numbers in the email always match the data.
	local := buildLocal(articles)
	d.Sentiment = local.Sentiment
	if len(d.Categories) == 0 {
		d.Categories = local.Categories
	}
	if len(d.TrendingTopics) == 0 {
		d.TrendingTopics = local.TrendingTopics
	}

	return d, nil
}

// buildLocal aggregates articles without any AI involvement: category
// groups with up to three highlights each, the ten most frequent keywords
// as trending topics, and an independently rounded sentiment split.
func buildLocal(articles []models.Article) models.Digest {
	byCategory := make(map[string][]models.Article)
	for _, a := range articles {
		cat := a.Category
		if cat == "" {
			cat = "general"
		}
		byCategory[cat] = append(byCategory[cat], a)
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(byCategory[names[i]]) != len(byCategory[names[j]]) {
			return len(byCategory[names[i]]) > len(byCategory[names[j]])
		}
		return names[i] < names[j]
	})

	categories := make([]models.DigestCategory, 0, len(names))
	for _, name := range names {
		group := topByImportance(byCategory[name], 3)
		highlights := make([]string, 0, len(group))
		for _, a := range group {
			highlights = append(highlights, a.Title)
		}
		categories = append(categories, models.DigestCategory{
			Name:       name,
			Articles:   len(byCategory[name]),
			Highlights: highlights,
		})
	}

	return models.Digest{
		Title: "Daily News Digest",
		Summary: fmt.Sprintf("Today's digest covers %d articles across %d categories.",
			len(articles), len(categories)),
		Categories:     categories,
		TrendingTopics: trendingKeywords(articles, 10),
		Sentiment:      sentimentMix(articles),
	}
}

// emptyDigest is the canonical digest for a day with no matching articles.
func emptyDigest() models.Digest {
	return models.Digest{
		Title:          "Daily News Digest",
		Summary:        "No new articles matched today.",
		Categories:     []models.DigestCategory{},
		TrendingTopics: []string{},
		Sentiment:      models.SentimentMix{Neutral: 100},
	}
}

func topByImportance(articles []models.Article, n int) []models.Article {
	sorted := make([]models.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func trendingKeywords(articles []models.Article, n int) []string {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, kw := range a.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			counts[kw]++
		}
	}

	keywords := make([]string, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// sentimentMix converts sentiment labels into percentages. Each bucket is
// rounded independently, so the values may not sum to exactly 100.
func sentimentMix(articles []models.Article) models.SentimentMix {
	if len(articles) == 0 {
		return models.SentimentMix{Neutral: 100}
	}

	var pos, neg, neu int
	for _, a := range articles {
		switch a.Sentiment {
		case models.SentimentPositive:
			pos++
		case models.SentimentNegative:
			neg++
		default:
			neu++
		}
	}

	total := float64(len(articles))
	round := func(n int) int {
		return int(float64(n)/total*100 + 0.5)
	}
	return models.SentimentMix{
		Positive: round(pos),
		Negative: round(neg),
		Neutral:  round(neu),
	}
}

func digestPrompt(articles []models.Article) string {
	var b strings.Builder
	b.WriteString("Create a daily news digest from these articles. Respond with JSON only, no other text.\n\nArticles:\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, a.Category, a.Title)
		if a.Summary != "" {
			fmt.Fprintf(&b, " - %s", a.Summary)
		}
		b.WriteByte('\n')
	}
	b.WriteString(`
Respond with exactly this JSON structure:
{
  "title": "digest title",
  "summary": "2-3 sentence overview of today's news",
  "categories": [{"name": "category", "articles": 0, "highlights": ["headline"]}],
  "trendingTopics": ["topic"]
}
`)
	return b.String()
}
