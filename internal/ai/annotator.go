package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/models"
)

// Generator produces text for a prompt. Satisfied by *Client.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

type annotationStore interface {
	ListUnannotated(ctx context.Context, since time.Time, limit int) ([]models.Article, error)
	UpdateAnnotation(ctx context.Context, id string, ann models.Annotation) error
}

// AnnotatorConfig tunes the annotation sweep.
type AnnotatorConfig struct {
	// Delay between consecutive AI calls during a sweep.
	Delay time.Duration
	// SweepLimit caps how many articles one sweep processes.
	SweepLimit int
	// Lookback bounds how far back a sweep reaches for unannotated rows.
	Lookback time.Duration
}

// DefaultAnnotatorConfig returns sensible defaults
func DefaultAnnotatorConfig() AnnotatorConfig {
	return AnnotatorConfig{
		Delay:      time.Second,
		SweepLimit: 50,
		Lookback:   24 * time.Hour,
	}
}

// Annotator attaches summaries, categories, sentiment, and keywords to
// collected articles. Every article gets an annotation: when the AI call
// fails for any reason the deterministic fallback is used instead.
type Annotator struct {
	generator Generator
	store     annotationStore
	config    AnnotatorConfig
	logger    *logging.Logger
}

func NewAnnotator(generator Generator, store annotationStore, config AnnotatorConfig, logger *logging.Logger) *Annotator {
	if config.Delay == 0 {
		config.Delay = DefaultAnnotatorConfig().Delay
	}
	if config.SweepLimit == 0 {
		config.SweepLimit = DefaultAnnotatorConfig().SweepLimit
	}
	if config.Lookback == 0 {
		config.Lookback = DefaultAnnotatorConfig().Lookback
	}
	return &Annotator{
		generator: generator,
		store:     store,
		config:    config,
		logger:    logger,
	}
}

// Annotate produces an annotation for one article. It never fails: AI
// errors and malformed responses degrade to the fallback annotation.
func (a *Annotator) Annotate(ctx context.Context, article models.Article) models.Annotation {
	if !a.generator.Available() {
		return FallbackAnnotation(article)
	}

	raw, err := a.generator.Generate(ctx, annotationPrompt(article))
	if err != nil {
		a.logger.Warn("AI annotation failed, using fallback",
			logging.WithField("article", article.ID),
			logging.WithField("reason", ClassifyFailure(err)),
			logging.WithField("error", err.Error()))
		return FallbackAnnotation(article)
	}

	ann, err := parseAnnotation(raw)
	if err != nil {
		a.logger.Warn("AI annotation unparseable, using fallback",
			logging.WithField("article", article.ID),
			logging.WithField("error", err.Error()))
		return FallbackAnnotation(article)
	}

	return sanitizeAnnotation(ann, article)
}

// Sweep annotates a batch of unannotated articles, oldest first. It
// returns the number of articles annotated. A store failure on one row is
// logged and skipped so one bad row never stalls the backlog.
func (a *Annotator) Sweep(ctx context.Context) (int, error) {
	since := time.Now().Add(-a.config.Lookback)
	pending, err := a.store.ListUnannotated(ctx, since, a.config.SweepLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unannotated articles: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	a.logger.Info("annotation sweep started",
		logging.WithField("pending", len(pending)))

	processed := 0
	for i, article := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		ann := a.Annotate(ctx, article)
		if err := a.store.UpdateAnnotation(ctx, article.ID, ann); err != nil {
			a.logger.Warn("failed to store annotation",
				logging.WithField("article", article.ID),
				logging.WithField("error", err.Error()))
			continue
		}
		processed++

		// Space out AI calls to stay under provider rate limits.
		if a.generator.Available() && i < len(pending)-1 {
			select {
			case <-time.After(a.config.Delay):
			case <-ctx.Done():
				return processed, ctx.Err()
			}
		}
	}

	a.logger.Info("annotation sweep finished",
		logging.WithField("processed", processed))

	return processed, nil
}

// FallbackAnnotation is the deterministic annotation used when no AI
// response is available. Identical inputs always produce identical output.
func FallbackAnnotation(article models.Article) models.Annotation {
	return models.Annotation{
		Summary:     truncate(article.Title, 200),
		Category:    "uncategorized",
		Sentiment:   models.SentimentNeutral,
		Keywords:    []string{},
		Importance:  0.5,
		ReadingTime: 2,
	}
}

func annotationPrompt(article models.Article) string {
	content := truncate(article.Content, 1500)
	return fmt.Sprintf(`Analyze this news article and respond with JSON only, no other text.

Title: %s
Content: %s

Respond with exactly this JSON structure:
{
  "summary": "2-3 sentence summary of the article",
  "category": "one of: politics, business, tech, science, health, sports, entertainment, world, general",
  "sentiment": "one of: positive, negative, neutral",
  "keywords": ["up to 5 keywords"],
  "importanceScore": 0.0,
  "readingTime": 1
}

importanceScore is a number between 0 and 1. readingTime is estimated minutes to read the full article.`,
		article.Title, content)
}

// parseAnnotation extracts the first balanced JSON object from the model's
// response. Models wrap JSON in markdown fences or prose often enough that
// plain unmarshal is not sufficient.
func parseAnnotation(raw string) (models.Annotation, error) {
	var ann models.Annotation

	obj := ExtractJSON(raw)
	if obj == "" {
		return ann, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(obj), &ann); err != nil {
		return ann, fmt.Errorf("failed to parse annotation JSON: %w", err)
	}
	if ann.Summary == "" {
		return ann, fmt.Errorf("annotation missing summary")
	}
	return ann, nil
}

// ExtractJSON returns the first balanced JSON object in raw, or "" when
// there is none. Model responses often wrap the object in prose or code
// fences.
func ExtractJSON(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1]
				}
			}
		}
	}
	return ""
}

// sanitizeAnnotation clamps model output into the ranges the rest of the
// pipeline relies on.
func sanitizeAnnotation(ann models.Annotation, article models.Article) models.Annotation {
	fallback := FallbackAnnotation(article)

	switch ann.Sentiment {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		ann.Sentiment = models.SentimentNeutral
	}

	if ann.Category == "" {
		ann.Category = fallback.Category
	}
	ann.Category = strings.ToLower(strings.TrimSpace(ann.Category))

	if ann.Keywords == nil {
		ann.Keywords = []string{}
	}
	if len(ann.Keywords) > 5 {
		ann.Keywords = ann.Keywords[:5]
	}

	if ann.Importance < 0 {
		ann.Importance = 0
	}
	if ann.Importance > 1 {
		ann.Importance = 1
	}

	if ann.ReadingTime < 1 {
		ann.ReadingTime = fallback.ReadingTime
	}

	return ann
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
