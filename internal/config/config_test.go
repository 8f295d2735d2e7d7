package config

import (
	"errors"
	"testing"
	"time"

	chartErrors "github.com/kapu/tj-jpop-chart-go/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN", "DATABASE_PATH",
		"GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"OPENAI_ENABLE_FALLBACK", "LLM_DAILY_LIMIT", "LLM_TIMEOUT_SECONDS",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"TJ_CHART_API_URL", "ARTIST_ALIAS_PATH", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Database.UseRemote() {
		t.Fatalf("expected embedded backend without remote settings")
	}
	if cfg.Database.Path != "data/songs.db" {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.LLM.DailyLimit != 20 {
		t.Fatalf("expected default daily limit 20, got %d", cfg.LLM.DailyLimit)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", cfg.LLM.Timeout)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model %q", cfg.Gemini.Model)
	}
	if cfg.LLMEnabled() {
		t.Fatalf("LLM must be disabled without GEMINI_API_KEY")
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis lock must be disabled without REDIS_HOST")
	}
}

func TestRemoteRequiresURLAndToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("TURSO_DATABASE_URL", "libsql://songs.turso.io")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.UseRemote() {
		t.Fatalf("URL alone must not select the remote backend")
	}

	t.Setenv("TURSO_AUTH_TOKEN", "token")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Database.UseRemote() {
		t.Fatalf("URL and token must select the remote backend")
	}
}

func TestInvalidDailyLimitFailsFast(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_DAILY_LIMIT", "twenty")

	_, err := Load()
	var cfgErr *chartErrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Key != "LLM_DAILY_LIMIT" {
		t.Fatalf("unexpected key %q", cfgErr.Key)
	}
}

func TestNegativeDailyLimitRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_DAILY_LIMIT", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for negative limit")
	}
}
