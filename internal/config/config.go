package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	AI        AIConfig
	Email     EmailConfig
	Collect   CollectConfig
	Logging   LoggingConfig
}

// ServerConfig holds the admin HTTP surface configuration
type ServerConfig struct {
	HTTPAddr string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// SchedulerConfig holds cron clock configuration
type SchedulerConfig struct {
	// Timezone is the IANA name all cron expressions are evaluated in.
	Timezone string
}

// AIConfig holds the summarization service configuration
type AIConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	// AnnotateDelay paces consecutive annotation calls within one sweep.
	AnnotateDelay time.Duration
	// SweepLimit bounds how many unannotated rows one sweep processes.
	SweepLimit int
}

// EmailConfig holds the outbound email transport configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	// SendDelay paces consecutive digest sends within one fan-out.
	SendDelay time.Duration
}

// CollectConfig holds source collection configuration
type CollectConfig struct {
	RateLimitDur time.Duration
	FetchTimeout time.Duration
	MaxItems     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	httpAddr := flag.String("http", ":8080", "HTTP admin server address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	cacheTTL := flag.Duration("cache-ttl", 10*time.Minute, "Cache TTL for recent-article queries")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	rateLimitDur := flag.Duration("rate-limit", time.Second, "Minimum delay between requests to same host")
	fetchTimeout := flag.Duration("fetch-timeout", 10*time.Second, "Per-source fetch timeout")
	maxItems := flag.Int("max-items", 50, "Maximum items collected per source per sweep")
	timezone := flag.String("timezone", "UTC", "Timezone for cron schedules")
	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "newshub", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")

	flag.Parse()

	applyEnvOverrides(httpAddr, logLevel, cacheTTL, cacheBackend, redisAddr, rateLimitDur, fetchTimeout, maxItems, timezone, dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	return &Config{
		Server: ServerConfig{
			HTTPAddr: *httpAddr,
		},
		Database: DatabaseConfig{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Password: *dbPassword,
			Database: *dbName,
			SSLMode:  *dbSSLMode,
		},
		Cache: CacheConfig{
			Backend:   *cacheBackend,
			TTL:       *cacheTTL,
			RedisAddr: *redisAddr,
		},
		Scheduler: SchedulerConfig{
			Timezone: *timezone,
		},
		AI:    loadAIConfig(),
		Email: loadEmailConfig(),
		Collect: CollectConfig{
			RateLimitDur: *rateLimitDur,
			FetchTimeout: *fetchTimeout,
			MaxItems:     *maxItems,
		},
		Logging: LoggingConfig{
			Level: *logLevel,
		},
	}
}

func loadAIConfig() AIConfig {
	timeout := 30 * time.Second
	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	delay := time.Second
	if v := os.Getenv("AI_ANNOTATE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			delay = d
		}
	}

	limit := 50
	if v := os.Getenv("AI_SWEEP_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	return AIConfig{
		Endpoint:      getEnvOrDefault("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
		APIKey:        os.Getenv("GEMINI_API_KEY"),
		Model:         getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		Timeout:       timeout,
		AnnotateDelay: delay,
		SweepLimit:    limit,
	}
}

func loadEmailConfig() EmailConfig {
	delay := time.Second
	if v := os.Getenv("EMAIL_SEND_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			delay = d
		}
	}

	return EmailConfig{
		APIKey:    os.Getenv("RESEND_API_KEY"),
		FromEmail: getEnvOrDefault("FROM_EMAIL", "digest@newshub.local"),
		SendDelay: delay,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	logLevel *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	rateLimitDur *time.Duration,
	fetchTimeout *time.Duration,
	maxItems *int,
	timezone *string,
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*rateLimitDur = d
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*fetchTimeout = d
		}
	}
	if v := os.Getenv("MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*maxItems = n
		}
	}
	if v := os.Getenv("SCHEDULER_TZ"); v != "" {
		*timezone = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
}
