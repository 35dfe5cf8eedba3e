package config

import (
	"flag"
	"io"
	"os"
	"testing"
	"time"
)

func loadWithArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	if len(args) == 0 {
		args = []string{"test"}
	}

	oldCommandLine := flag.CommandLine
	oldArgs := os.Args

	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = args

	t.Cleanup(func() {
		flag.CommandLine = oldCommandLine
		os.Args = oldArgs
	})

	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadWithArgs(t, "test")

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Database != "newshub" {
		t.Errorf("Database = %q", cfg.Database.Database)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Scheduler.Timezone != "UTC" {
		t.Errorf("Timezone = %q", cfg.Scheduler.Timezone)
	}
	if cfg.Collect.MaxItems != 50 {
		t.Errorf("MaxItems = %d", cfg.Collect.MaxItems)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.AI.SweepLimit != 50 {
		t.Errorf("AI.SweepLimit = %d", cfg.AI.SweepLimit)
	}
}

func TestLoadFromFlags(t *testing.T) {
	cfg := loadWithArgs(t, "test",
		"-http", ":9090",
		"-max-items", "10",
		"-timezone", "Europe/Berlin",
		"-db-name", "other",
	)

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Collect.MaxItems != 10 {
		t.Errorf("MaxItems = %d", cfg.Collect.MaxItems)
	}
	if cfg.Scheduler.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q", cfg.Scheduler.Timezone)
	}
	if cfg.Database.Database != "other" {
		t.Errorf("Database = %q", cfg.Database.Database)
	}
}

func TestLoadEnvOverridesFlags(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("SCHEDULER_TZ", "Asia/Tokyo")
	t.Setenv("MAX_ITEMS", "5")

	cfg := loadWithArgs(t, "test", "-http", ":9090")

	if cfg.Server.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, env should win", cfg.Server.HTTPAddr)
	}
	if cfg.Scheduler.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q", cfg.Scheduler.Timezone)
	}
	if cfg.Collect.MaxItems != 5 {
		t.Errorf("MaxItems = %d", cfg.Collect.MaxItems)
	}
}

func TestLoadAIAndEmailEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("AI_SWEEP_LIMIT", "25")
	t.Setenv("RESEND_API_KEY", "re_456")
	t.Setenv("FROM_EMAIL", "news@example.com")
	t.Setenv("EMAIL_SEND_DELAY", "250ms")

	cfg := loadWithArgs(t, "test")

	if cfg.AI.APIKey != "key-123" || cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("AI config = %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 45*time.Second || cfg.AI.SweepLimit != 25 {
		t.Errorf("AI tuning = %+v", cfg.AI)
	}
	if cfg.Email.APIKey != "re_456" || cfg.Email.FromEmail != "news@example.com" {
		t.Errorf("Email config = %+v", cfg.Email)
	}
	if cfg.Email.SendDelay != 250*time.Millisecond {
		t.Errorf("SendDelay = %v", cfg.Email.SendDelay)
	}
}

func TestLoadBadEnvValuesIgnored(t *testing.T) {
	t.Setenv("MAX_ITEMS", "lots")
	t.Setenv("AI_TIMEOUT", "soon")

	cfg := loadWithArgs(t, "test")

	if cfg.Collect.MaxItems != 50 {
		t.Errorf("MaxItems = %d, want default kept", cfg.Collect.MaxItems)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("AI.Timeout = %v, want default kept", cfg.AI.Timeout)
	}
}
