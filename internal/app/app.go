// Package app wires the collection pipeline, the scheduler, and the admin
// HTTP surface together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/newshub/newshub/internal/ai"
	"github.com/newshub/newshub/internal/cache"
	"github.com/newshub/newshub/internal/collect"
	"github.com/newshub/newshub/internal/config"
	"github.com/newshub/newshub/internal/database"
	"github.com/newshub/newshub/internal/digest"
	"github.com/newshub/newshub/internal/email"
	"github.com/newshub/newshub/internal/httpapi"
	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/ratelimit"
	"github.com/newshub/newshub/internal/scheduler"
	"github.com/newshub/newshub/internal/sources"
)

// Retention windows for the cleanup job.
const (
	articleRetention  = 30 * 24 * time.Hour
	emailLogRetention = 90 * 24 * time.Hour
)

// Cron schedules for the built-in jobs.
const (
	JobCollectNews     = "collect_news"
	JobProcessNewsAI   = "process_news_ai"
	JobSendDailyDigest = "send_daily_digest"
	JobCleanupOldData  = "cleanup_old_data"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Cache      cache.Cache
	Manager    *collect.Manager
	Annotator  *ai.Annotator
	Fanout     *digest.Fanout
	Scheduler  *scheduler.Scheduler
	HTTPServer *httpapi.Server

	db         *database.DB
	sourceSt   *database.SourceStore
	articleSt  *database.ArticleStore
	userSt     *database.UserStore
	emailLogSt *database.EmailLogStore
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	app.Logger = app.initLogger()
	app.Cache = app.initCache()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.Collect.RateLimitDur)
	collectorConfig := sources.DefaultConfig()
	if cfg.Collect.FetchTimeout > 0 {
		collectorConfig.Timeout = cfg.Collect.FetchTimeout
	}
	if cfg.Collect.MaxItems > 0 {
		collectorConfig.MaxItems = cfg.Collect.MaxItems
	}

	app.Manager = collect.NewManager(app.sourceSt, app.articleSt, limiter, collectorConfig, app.Logger)

	aiClient := ai.NewClient(ai.Config{
		Endpoint: cfg.AI.Endpoint,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
	})
	app.Annotator = ai.NewAnnotator(aiClient, app.articleSt, ai.AnnotatorConfig{
		Delay:      cfg.AI.AnnotateDelay,
		SweepLimit: cfg.AI.SweepLimit,
	}, app.Logger)

	sender := email.NewResendSender(email.Config{
		APIKey:    cfg.Email.APIKey,
		FromEmail: cfg.Email.FromEmail,
	}, app.Logger)

	builder := digest.NewBuilder(aiClient, app.Logger)
	app.Fanout = digest.NewFanout(
		app.userSt, app.articleSt, app.emailLogSt,
		builder, sender, app.Cache,
		digest.FanoutConfig{SendDelay: cfg.Email.SendDelay},
		app.Logger,
	)

	if err := app.initScheduler(); err != nil {
		return nil, err
	}

	app.HTTPServer = httpapi.New(app.Scheduler, app.Manager, app.Logger)

	return app, nil
}

// Run migrates the schema, seeds sources, starts the scheduler, and serves
// the admin HTTP surface until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := a.seedSources(ctx); err != nil {
		return fmt.Errorf("failed to seed sources: %w", err)
	}

	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.HTTPServer.Start(a.Config.Server.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr: a.Config.Cache.RedisAddr,
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache",
				logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

func (a *App) initDatabase() error {
	dbConfig := database.DefaultConfig()
	dbConfig.Host = a.Config.Database.Host
	dbConfig.Port = a.Config.Database.Port
	dbConfig.User = a.Config.Database.User
	dbConfig.Password = a.Config.Database.Password
	dbConfig.Database = a.Config.Database.Database
	dbConfig.SSLMode = a.Config.Database.SSLMode

	db, err := database.New(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.db = db
	a.sourceSt = database.NewSourceStore(db)
	a.articleSt = database.NewArticleStore(db)
	a.userSt = database.NewUserStore(db)
	a.emailLogSt = database.NewEmailLogStore(db)

	return nil
}

func (a *App) initScheduler() error {
	sched, err := scheduler.New(a.Config.Scheduler.Timezone, a.Logger)
	if err != nil {
		return err
	}

	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{JobCollectNews, "0 * * * *", func(ctx context.Context) error {
			_, err := a.Manager.CollectFromAllActiveSources(ctx)
			return err
		}},
		{JobProcessNewsAI, "0 2 * * *", func(ctx context.Context) error {
			_, err := a.Annotator.Sweep(ctx)
			return err
		}},
		{JobSendDailyDigest, "0 8 * * *", func(ctx context.Context) error {
			_, err := a.Fanout.Run(ctx)
			return err
		}},
		{JobCleanupOldData, "0 1 * * *", a.cleanupOldData},
	}

	for _, job := range jobs {
		if err := sched.Register(job.name, job.spec, job.fn); err != nil {
			return err
		}
	}

	a.Scheduler = sched
	return nil
}

// cleanupOldData enforces the retention windows: articles after 30 days,
// email logs after 90.
func (a *App) cleanupOldData(ctx context.Context) error {
	articles, err := a.articleSt.DeleteOlderThan(ctx, time.Now().Add(-articleRetention))
	if err != nil {
		return err
	}

	logs, err := a.emailLogSt.DeleteOlderThan(ctx, time.Now().Add(-emailLogRetention))
	if err != nil {
		return err
	}

	a.Logger.Info("retention sweep finished",
		logging.WithField("articlesDeleted", articles),
		logging.WithField("emailLogsDeleted", logs))

	return nil
}

// seedSources upserts the configured source list so a fresh database has
// something to collect from. Existing rows keep their active flag and
// collector kind.
func (a *App) seedSources(ctx context.Context) error {
	seedConfig := sources.DefaultSeedConfig()

	if path := sources.FindSeedConfig(); path != "" {
		loaded, err := sources.LoadSeedConfig(path)
		if err != nil {
			a.Logger.Warn("Failed to load sources config, using defaults",
				logging.WithFields(map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				}))
		} else {
			seedConfig = loaded
			a.Logger.Info("Loaded sources config", logging.WithField("path", path))
		}
	}

	for _, src := range seedConfig.Models() {
		if _, err := a.sourceSt.Upsert(ctx, src); err != nil {
			return err
		}
	}

	a.Logger.Info("sources seeded", logging.WithField("count", len(seedConfig.Sources)))
	return nil
}
