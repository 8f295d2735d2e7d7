package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/pkg/errors"
)

type Config struct {
	Database DatabaseConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	LLM      LLMConfig
	Redis    RedisConfig
	TJMedia  TJMediaConfig
	Logging  LoggingConfig
}

type DatabaseConfig struct {
	// RemoteURL and AuthToken select the managed backend only when both are set.
	RemoteURL string
	AuthToken string
	Path      string
}

// UseRemote reports whether the remote backend should be used.
func (c DatabaseConfig) UseRemote() bool {
	return c.RemoteURL != "" && c.AuthToken != ""
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type LLMConfig struct {
	DailyLimit int
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured for the suggestion lock.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type TJMediaConfig struct {
	ChartURL        string
	ArtistAliasPath string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	// .env.local wins over .env; godotenv never overrides variables already set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	dailyLimit, err := getEnvIntStrict("LLM_DAILY_LIMIT", constants.LLMConfig.DefaultDailyLimit)
	if err != nil {
		return nil, err
	}
	timeoutSeconds, err := getEnvIntStrict("LLM_TIMEOUT_SECONDS", int(constants.LLMConfig.RequestTimeout/time.Second))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			RemoteURL: getEnv("TURSO_DATABASE_URL", ""),
			AuthToken: getEnv("TURSO_AUTH_TOKEN", ""),
			Path:      getEnv("DATABASE_PATH", constants.DatabaseConfig.DefaultPath),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.LLMConfig.DefaultGeminiModel),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", constants.LLMConfig.DefaultOpenAIModel),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		LLM: LLMConfig{
			DailyLimit: dailyLimit,
			Timeout:    time.Duration(timeoutSeconds) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		TJMedia: TJMediaConfig{
			ChartURL:        getEnv("TJ_CHART_API_URL", constants.TJMediaConfig.DefaultChartURL),
			ArtistAliasPath: getEnv("ARTIST_ALIAS_PATH", "data/artist_aliases.tsv"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LLM.DailyLimit < 0 {
		return errors.NewConfigError("LLM_DAILY_LIMIT must not be negative", "LLM_DAILY_LIMIT")
	}
	if c.LLM.Timeout <= 0 {
		return errors.NewConfigError("LLM_TIMEOUT_SECONDS must be positive", "LLM_TIMEOUT_SECONDS")
	}
	if !c.Database.UseRemote() && strings.TrimSpace(c.Database.Path) == "" {
		return errors.NewConfigError("DATABASE_PATH is required for the embedded backend", "DATABASE_PATH")
	}
	if c.Redis.Enabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return errors.NewConfigError("REDIS_PORT is out of range", "REDIS_PORT")
	}
	return nil
}

// LLMEnabled reports whether a credential for the primary model is present.
func (c *Config) LLMEnabled() bool {
	return c.Gemini.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvIntStrict is getEnvInt for settings where a typo must not fall back to the default.
func getEnvIntStrict(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewConfigError(fmt.Sprintf("%s must be an integer, got %q", key, value), key)
	}
	return intVal, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
