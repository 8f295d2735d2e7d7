package suggestion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/prompt"
	"github.com/kapu/tj-jpop-chart-go/internal/service/ai"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Generator answers a prompt with plain text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (ai.Generation, error)
}

// SongStore is the part of the chart repository the pipeline reads and writes.
type SongStore interface {
	SongByTjNumber(ctx context.Context, tjNumber string) (*domain.Song, error)
	SetSongLLMTitle(ctx context.Context, tjNumber, title string) (int64, error)
	PendingSongs(ctx context.Context) ([]domain.RankedSong, error)
}

// UsageCounter tracks today's LLM calls.
type UsageCounter interface {
	TodayUsage(ctx context.Context) (int, error)
	IncrementToday(ctx context.Context) (int, error)
}

type Config struct {
	DailyLimit int
	Timeout    time.Duration
	Workers    int
}

// Pipeline turns a song's Japanese metadata into a suggested Korean title.
// A request that cannot produce a suggestion changes nothing; the outcome
// says why.
type Pipeline struct {
	songs     SongStore
	usage     UsageCounter
	generator Generator
	locker    Locker
	cfg       Config
	logger    *zap.Logger
}

// NewPipeline builds a pipeline. A nil generator means no LLM credential is
// configured and every request ends as not_configured.
func NewPipeline(songs SongStore, usage UsageCounter, generator Generator, locker Locker, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.LLMConfig.RequestTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = constants.BatchConfig.SuggestionWorkers
	}
	return &Pipeline{
		songs:     songs,
		usage:     usage,
		generator: generator,
		locker:    locker,
		cfg:       cfg,
		logger:    logger,
	}
}

// Suggest requests a title for one song. Only storage failures are returned
// as errors; upstream problems are reported through the outcome.
func (p *Pipeline) Suggest(ctx context.Context, tjNumber string) (domain.SuggestionResult, error) {
	tjNumber = strings.TrimSpace(tjNumber)
	result := domain.SuggestionResult{TjNumber: tjNumber, Quota: p.cfg.DailyLimit}

	if tjNumber == "" {
		result.Outcome = domain.SuggestionInvalidRequest
		return result, nil
	}
	if p.generator == nil {
		result.Outcome = domain.SuggestionNotConfigured
		return result, nil
	}

	used, err := p.usage.TodayUsage(ctx)
	if err != nil {
		return result, err
	}
	result.Usage = used
	// 쿼터 소진 시 LLM 호출 없이 종료
	if used >= p.cfg.DailyLimit {
		p.logger.Info("LLM quota reached",
			zap.String("tj_number", tjNumber),
			zap.Int("usage", used),
			zap.Int("quota", p.cfg.DailyLimit),
		)
		result.Outcome = domain.SuggestionQuotaExceeded
		return result, nil
	}

	// 같은 곡에 대한 동시 요청은 하나만 LLM을 호출
	unlock, ok, err := p.locker.TryLock(ctx, tjNumber)
	if err != nil {
		return result, fmt.Errorf("failed to lock suggestion for %s: %w", tjNumber, err)
	}
	if !ok {
		result.Outcome = domain.SuggestionInFlight
		return result, nil
	}
	defer unlock()

	song, err := p.songs.SongByTjNumber(ctx, tjNumber)
	if err != nil {
		return result, err
	}
	if song == nil {
		result.Outcome = domain.SuggestionSongNotFound
		return result, nil
	}

	text, err := prompt.BuildTitleSuggestion(song.TitleJa, song.ArtistJa)
	if err != nil {
		return result, fmt.Errorf("failed to build suggestion prompt: %w", err)
	}

	gen, err := p.generate(ctx, text)
	if err != nil {
		p.logger.Warn("LLM request failed",
			zap.String("tj_number", tjNumber),
			zap.Error(err),
		)
		result.Outcome = domain.SuggestionUpstreamFailure
		return result, nil
	}
	result.Provider = gen.Provider

	title := strings.TrimSpace(gen.Text)
	if title == "" {
		p.logger.Warn("LLM returned empty suggestion",
			zap.String("tj_number", tjNumber),
			zap.String("provider", gen.Provider),
		)
		result.Outcome = domain.SuggestionEmptyResponse
		return result, nil
	}

	if _, err := p.songs.SetSongLLMTitle(ctx, tjNumber, title); err != nil {
		return result, err
	}
	// a crash here leaves the title stored without charging the quota
	count, err := p.usage.IncrementToday(ctx)
	if err != nil {
		return result, err
	}

	result.Outcome = domain.SuggestionSuggested
	result.Title = title
	result.Usage = count

	p.logger.Info("LLM title suggested",
		zap.String("tj_number", tjNumber),
		zap.String("title_ja", song.TitleJa),
		zap.String("suggestion", util.TruncateString(title, 80)),
		zap.String("provider", gen.Provider),
		zap.Int("usage", count),
		zap.Int("quota", p.cfg.DailyLimit),
	)
	return result, nil
}

func (p *Pipeline) generate(ctx context.Context, text string) (ai.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	return p.generator.GenerateText(ctx, text)
}

// SuggestPending requests titles for pending songs that have none yet, at
// most limit of them when limit is positive. Results keep the pending order.
func (p *Pipeline) SuggestPending(ctx context.Context, limit int) ([]domain.SuggestionResult, error) {
	pending, err := p.songs.PendingSongs(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(pending))
	for _, song := range pending {
		if song.TitleKoLLM != nil && *song.TitleKoLLM != "" {
			continue
		}
		targets = append(targets, song.TjNumber)
		if limit > 0 && len(targets) == limit {
			break
		}
	}
	if len(targets) == 0 {
		return []domain.SuggestionResult{}, nil
	}

	wp := pool.New().WithMaxGoroutines(p.cfg.Workers)
	results := make([]domain.SuggestionResult, len(targets))
	var (
		firstErr error
		errMu    sync.Mutex
	)

	for idx, tjNumber := range targets {
		idx, tjNumber := idx, tjNumber
		wp.Go(func() {
			result, err := p.Suggest(ctx, tjNumber)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
			results[idx] = result
		})
	}

	wp.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}
