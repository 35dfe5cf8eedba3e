package collect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newshub/newshub/internal/database"
	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/models"
	"github.com/newshub/newshub/internal/ratelimit"
	"github.com/newshub/newshub/internal/sources"
)

// ErrSourceUnavailable is returned when a collection target does not exist
// or has been deactivated.
var ErrSourceUnavailable = errors.New("source not found or inactive")

type sourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Source, error)
	ListActive(ctx context.Context) ([]models.Source, error)
}

type articleStore interface {
	InsertIfAbsent(ctx context.Context, article models.Article) (bool, error)
}

// Manager runs collections across sources: it builds the right collector
// for each source, normalizes the fetched items into articles, and stores
// them with hash-based dedupe.
type Manager struct {
	sources  sourceStore
	articles articleStore
	limiter  *ratelimit.Limiter
	config   sources.Config
	logger   *logging.Logger

	mu         sync.Mutex
	collectors map[string]sources.Collector

	statusMu   sync.Mutex
	lastRun    *time.Time
	lastSaved  int
	lastErrors int
	lastSwept  int
	running    bool
}

func NewManager(sourceStore sourceStore, articleStore articleStore, limiter *ratelimit.Limiter, config sources.Config, logger *logging.Logger) *Manager {
	return &Manager{
		sources:    sourceStore,
		articles:   articleStore,
		limiter:    limiter,
		config:     config,
		logger:     logger,
		collectors: make(map[string]sources.Collector),
	}
}

// CollectFromSource fetches and stores articles from a single source.
// It returns the number of newly saved articles; duplicates are skipped
// silently. Missing and inactive sources both report ErrSourceUnavailable.
func (m *Manager) CollectFromSource(ctx context.Context, sourceID string) (int, error) {
	source, err := m.sources.GetByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, database.ErrSourceNotFound) {
			return 0, ErrSourceUnavailable
		}
		return 0, fmt.Errorf("failed to load source %s: %w", sourceID, err)
	}
	if !source.Active {
		return 0, ErrSourceUnavailable
	}

	return m.collectOne(ctx, *source)
}

// CollectFromAllActiveSources sweeps every active source. Failures are
// isolated per source: one broken feed never aborts the sweep. The
// returned count is the total of newly saved articles.
func (m *Manager) CollectFromAllActiveSources(ctx context.Context) (int, error) {
	active, err := m.sources.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active sources: %w", err)
	}

	m.setRunning(true)
	defer m.setRunning(false)

	saved := 0
	failed := 0
	for _, source := range active {
		n, err := m.collectOne(ctx, source)
		if err != nil {
			failed++
			m.logger.Warn("source collection failed",
				logging.WithField("source", source.Name),
				logging.WithField("error", err.Error()))
			continue
		}
		saved += n
	}

	now := time.Now()
	m.statusMu.Lock()
	m.lastRun = &now
	m.lastSaved = saved
	m.lastErrors = failed
	m.lastSwept = len(active)
	m.statusMu.Unlock()

	m.logger.Info("collection sweep finished",
		logging.WithField("sources", len(active)),
		logging.WithField("saved", saved),
		logging.WithField("failed", failed))

	return saved, nil
}

// Status reports whether a sweep is in flight and what the last one did.
func (m *Manager) Status() models.CollectionStatus {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return models.CollectionStatus{
		Running:      m.running,
		LastRun:      m.lastRun,
		LastSaved:    m.lastSaved,
		LastErrors:   m.lastErrors,
		SourcesSwept: m.lastSwept,
	}
}

func (m *Manager) collectOne(ctx context.Context, source models.Source) (int, error) {
	collector, err := m.collectorFor(source)
	if err != nil {
		return 0, err
	}

	items, err := collector.Collect(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect from %s: %w", source.Name, err)
	}

	saved := 0
	for _, item := range items {
		article := articleFromItem(source, item)
		inserted, err := m.articles.InsertIfAbsent(ctx, article)
		if err != nil {
			m.logger.Warn("failed to save article",
				logging.WithField("source", source.Name),
				logging.WithField("url", item.URL),
				logging.WithField("error", err.Error()))
			continue
		}
		if inserted {
			saved++
		}
	}

	m.logger.Info("collected from source",
		logging.WithField("source", source.Name),
		logging.WithField("fetched", len(items)),
		logging.WithField("saved", saved))

	return saved, nil
}

// collectorFor returns a cached collector for the source, building one on
// first use. The cache is keyed by source ID; a source whose kind changes
// gets a fresh collector because the stored kind is compared.
func (m *Manager) collectorFor(source models.Source) (sources.Collector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.collectors[source.ID]; ok && c.Kind() == source.Kind {
		return c, nil
	}

	c, err := sources.New(source, m.limiter, m.config)
	if err != nil {
		return nil, err
	}
	m.collectors[source.ID] = c
	return c, nil
}

func (m *Manager) setRunning(v bool) {
	m.statusMu.Lock()
	m.running = v
	m.statusMu.Unlock()
}

func articleFromItem(source models.Source, item models.RawItem) models.Article {
	category := item.Category
	if category == "" {
		category = source.Category
	}
	publishedAt := time.Now()
	if item.PublishedAt != nil {
		publishedAt = *item.PublishedAt
	}
	return models.Article{
		SourceID:    source.ID,
		Title:       item.Title,
		URL:         item.URL,
		Content:     item.Content,
		Author:      item.Author,
		PublishedAt: publishedAt,
		ContentHash: ContentHash(item.Title, item.URL),
		Category:    category,
	}
}

// ContentHash derives the dedupe key for an article from its title and URL.
func ContentHash(title, url string) string {
	sum := sha256.Sum256([]byte(title + url))
	return hex.EncodeToString(sum[:])
}
