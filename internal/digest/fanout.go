package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newshub/newshub/internal/cache"
	"github.com/newshub/newshub/internal/email"
	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/models"
)

type recipientStore interface {
	ListDigestRecipients(ctx context.Context, frequency string) ([]models.User, error)
}

type digestArticleStore interface {
	ListAnnotatedSince(ctx context.Context, since time.Time) ([]models.Article, error)
}

type emailLogStore interface {
	Insert(ctx context.Context, userID, subject string) (*models.EmailLog, error)
}

// FanoutConfig tunes the digest fan-out.
type FanoutConfig struct {
	// Frequency selects which recipients the run targets.
	Frequency string
	// Window bounds how far back articles are pulled.
	Window time.Duration
	// SendDelay spaces out deliveries to stay under provider limits.
	SendDelay time.Duration
	// LockTTL is how long a per-user lock may be held before it is
	// considered abandoned.
	LockTTL time.Duration
}

// DefaultFanoutConfig returns sensible defaults
func DefaultFanoutConfig() FanoutConfig {
	return FanoutConfig{
		Frequency: "daily",
		Window:    24 * time.Hour,
		SendDelay: 500 * time.Millisecond,
		LockTTL:   10 * time.Minute,
	}
}

// Report summarizes one fan-out run.
type Report struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Fanout builds and delivers per-user digests. Each user is processed at
// most once concurrently: a per-user lock is taken before building and
// released on every exit path.
type Fanout struct {
	users    recipientStore
	articles digestArticleStore
	logs     emailLogStore
	builder  *Builder
	sender   email.Sender
	cache    cache.Cache
	config   FanoutConfig
	logger   *logging.Logger
	locks    *lockSet
}

func NewFanout(
	users recipientStore,
	articles digestArticleStore,
	logs emailLogStore,
	builder *Builder,
	sender email.Sender,
	articleCache cache.Cache,
	config FanoutConfig,
	logger *logging.Logger,
) *Fanout {
	if config.Frequency == "" {
		config.Frequency = DefaultFanoutConfig().Frequency
	}
	if config.Window == 0 {
		config.Window = DefaultFanoutConfig().Window
	}
	if config.LockTTL == 0 {
		config.LockTTL = DefaultFanoutConfig().LockTTL
	}
	return &Fanout{
		users:    users,
		articles: articles,
		logs:     logs,
		builder:  builder,
		sender:   sender,
		cache:    articleCache,
		config:   config,
		logger:   logger,
		locks:    newLockSet(config.LockTTL),
	}
}

// Run delivers digests to every eligible recipient sequentially. A failure
// for one user never aborts the run.
func (f *Fanout) Run(ctx context.Context) (Report, error) {
	f.locks.sweepExpired()

	recipients, err := f.users.ListDigestRecipients(ctx, f.config.Frequency)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list digest recipients: %w", err)
	}

	report := Report{Total: len(recipients)}
	if len(recipients) == 0 {
		f.logger.Info("digest fan-out skipped, no recipients")
		return report, nil
	}

	articles, err := f.loadArticles(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load digest articles: %w", err)
	}

	f.logger.Info("digest fan-out started",
		logging.WithField("recipients", len(recipients)),
		logging.WithField("articles", len(articles)))

	for i, user := range recipients {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		switch f.deliverOne(ctx, user, articles) {
		case deliverySent:
			report.Sent++
		case deliverySkipped:
			report.Skipped++
		case deliveryFailed:
			report.Failed++
		}

		if f.config.SendDelay > 0 && i < len(recipients)-1 {
			select {
			case <-time.After(f.config.SendDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	f.logger.Info("digest fan-out finished",
		logging.WithField("total", report.Total),
		logging.WithField("sent", report.Sent),
		logging.WithField("skipped", report.Skipped),
		logging.WithField("failed", report.Failed))

	return report, nil
}

type deliveryOutcome int

const (
	deliverySent deliveryOutcome = iota
	deliverySkipped
	deliveryFailed
)

func (f *Fanout) deliverOne(ctx context.Context, user models.User, articles []models.Article) deliveryOutcome {
	if !f.locks.TryAcquire(user.ID) {
		f.logger.Warn("digest already in flight for user, skipping",
			logging.WithField("user", user.ID))
		return deliverySkipped
	}
	defer f.locks.Release(user.ID)

	matched := FilterForUser(articles, user.Prefs)
	if len(matched) == 0 {
		f.logger.Info("no articles matched user preferences, skipping",
			logging.WithField("user", user.ID))
		return deliverySkipped
	}

	d := f.builder.Build(ctx, matched)

	now := time.Now()
	html, text, err := email.RenderDigest(d, user.Name, now)
	if err != nil {
		f.logger.Error("failed to render digest",
			logging.WithField("user", user.ID),
			logging.WithField("error", err.Error()))
		return deliveryFailed
	}

	subject := email.DigestSubject(now)
	if err := f.sender.Send(ctx, email.Message{
		To:      user.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}); err != nil {
		f.logger.Error("failed to send digest",
			logging.WithField("user", user.ID),
			logging.WithField("error", err.Error()))
		return deliveryFailed
	}

	if _, err := f.logs.Insert(ctx, user.ID, subject); err != nil {
		// The email went out; a logging failure must not fail the user.
		f.logger.Warn("failed to record email log",
			logging.WithField("user", user.ID),
			logging.WithField("error", err.Error()))
	}

	return deliverySent
}

const articleCacheKey = "digest:articles"

// loadArticles fetches the digest article window, going through the cache
// so consecutive runs inside the TTL share one query.
func (f *Fanout) loadArticles(ctx context.Context) ([]models.Article, error) {
	if f.cache != nil {
		if raw, ok := f.cache.Get(articleCacheKey); ok {
			if s, ok := raw.(string); ok {
				var articles []models.Article
				if err := json.Unmarshal([]byte(s), &articles); err == nil {
					return articles, nil
				}
			}
		}
	}

	since := time.Now().Add(-f.config.Window)
	articles, err := f.articles.ListAnnotatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if data, err := json.Marshal(articles); err == nil {
			f.cache.Set(articleCacheKey, string(data))
		}
	}

	return articles, nil
}

// FilterForUser narrows articles by the user's preferences. Sources,
// categories, and keywords combine as AND. An empty filter list places no
// restriction; a user without preferences gets everything. Keywords match
// as case-insensitive substrings of the title and body text.
func FilterForUser(articles []models.Article, prefs *models.DigestPrefs) []models.Article {
	if prefs == nil {
		return articles
	}

	matched := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if !matchesSources(a, prefs.SelectedSources) {
			continue
		}
		if !matchesCategories(a, prefs.Categories) {
			continue
		}
		if !matchesKeywords(a, prefs.Keywords) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

func matchesSources(a models.Article, sources []string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, id := range sources {
		if a.SourceID == id {
			return true
		}
	}
	return false
}

func matchesCategories(a models.Article, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, cat := range categories {
		if strings.EqualFold(a.Category, cat) {
			return true
		}
	}
	return false
}

func matchesKeywords(a models.Article, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	haystack := strings.ToLower(a.Title + " " + a.Content)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
