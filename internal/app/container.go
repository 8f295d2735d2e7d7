package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/tj-jpop-chart-go/internal/config"
	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/internal/service/ai"
	"github.com/kapu/tj-jpop-chart-go/internal/service/cache"
	"github.com/kapu/tj-jpop-chart-go/internal/service/chart"
	"github.com/kapu/tj-jpop-chart-go/internal/service/database"
	"github.com/kapu/tj-jpop-chart-go/internal/service/suggestion"
	"github.com/kapu/tj-jpop-chart-go/internal/service/tjmedia"
	"github.com/kapu/tj-jpop-chart-go/internal/service/usage"
	"go.uber.org/zap"
)

// Container owns the storage handle and every service built on top of it.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store     *database.Store
	Charts    *chart.Repository
	Workflow  *chart.Workflow
	Ingester  *chart.Ingester
	Usage     *usage.Limiter
	Pipeline  *suggestion.Pipeline
	ChartFeed *tjmedia.Client

	closers []func()
}

// Close releases resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build opens storage, runs the schema bootstrap, and wires the services.
// Nothing is left open when it fails.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Storage
	store, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	closers = append(closers, func() {
		_ = store.Close()
	})

	if err := database.Migrate(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	charts := chart.NewRepository(store, logger)
	limiter := usage.NewLimiter(store, store.Backend(), logger)
	if err := limiter.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	// Chart feed
	artists, err := tjmedia.LoadArtistDirectory(cfg.TJMedia.ArtistAliasPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Artist aliases loaded",
		zap.String("path", cfg.TJMedia.ArtistAliasPath),
		zap.Int("count", artists.Len()),
	)
	feed := tjmedia.NewClient(&http.Client{Timeout: constants.TJMediaConfig.Timeout}, cfg.TJMedia.ChartURL, logger)

	// Suggestion lock
	var locker suggestion.Locker = suggestion.NewLocalLocker()
	if cfg.Redis.Enabled() {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		locker = cacheSvc
	}

	// AI stack; without a Gemini key the pipeline reports not_configured
	var generator suggestion.Generator
	ingester := chart.NewIngester(charts, artists, logger)
	if cfg.LLMEnabled() {
		modelManager, mmErr := ai.NewModelManager(ctx, ai.ModelManagerConfig{
			GeminiAPIKey:   cfg.Gemini.APIKey,
			GeminiModel:    cfg.Gemini.Model,
			OpenAIAPIKey:   cfg.OpenAI.APIKey,
			OpenAIModel:    cfg.OpenAI.Model,
			EnableFallback: cfg.OpenAI.EnableFallback,
		}, logger)
		if mmErr != nil {
			return nil, fmt.Errorf("failed to create model manager: %w", mmErr)
		}
		generator = modelManager
		ingester.WithTranslator(ai.NewTranslator(modelManager, cfg.LLM.Timeout, logger))
	} else {
		logger.Info("GEMINI_API_KEY not set, title suggestions disabled")
	}

	pipeline := suggestion.NewPipeline(charts, limiter, generator, locker, suggestion.Config{
		DailyLimit: cfg.LLM.DailyLimit,
		Timeout:    cfg.LLM.Timeout,
		Workers:    constants.BatchConfig.SuggestionWorkers,
	}, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Charts:    charts,
		Workflow:  chart.NewWorkflow(charts, logger),
		Ingester:  ingester,
		Usage:     limiter,
		Pipeline:  pipeline,
		ChartFeed: feed,
		closers:   closers,
	}, nil
}
