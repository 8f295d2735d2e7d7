package suggestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/prompt"
	"github.com/kapu/tj-jpop-chart-go/internal/service/ai"
	"github.com/kapu/tj-jpop-chart-go/internal/service/chart"
	"github.com/kapu/tj-jpop-chart-go/internal/service/database/dbtest"
	"github.com/kapu/tj-jpop-chart-go/internal/service/usage"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

type spyGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool
	prompts []string
}

func (s *spyGenerator) GenerateText(ctx context.Context, text string) (ai.Generation, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, text)
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return ai.Generation{}, ctx.Err()
	}
	if s.err != nil {
		return ai.Generation{}, s.err
	}
	return ai.Generation{Text: s.text, Provider: "spy", Model: "spy-1"}, nil
}

func (s *spyGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type fixture struct {
	repo    *chart.Repository
	limiter *usage.Limiter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := dbtest.NewStore(t)
	repo := chart.NewRepository(store, zap.NewNop())
	limiter := usage.NewLimiter(store, store.Backend(), zap.NewNop()).
		WithClock(func() time.Time { return time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC) })

	ctx := context.Background()
	drafts := []domain.SongDraft{
		{TjNumber: "68321", TitleJa: "打上花火", ArtistJa: "DAOKO×米津玄師"},
		{TjNumber: "52587", TitleJa: "アイドル", ArtistJa: "YOASOBI"},
		{TjNumber: "68150", TitleJa: "ベテルギウス", ArtistJa: "優里"},
	}
	entries := make([]domain.ChartEntry, 0, len(drafts))
	for i, d := range drafts {
		_, err := repo.UpsertSong(ctx, d)
		require.NoError(t, err)
		entries = append(entries, domain.ChartEntry{Rank: i + 1, TjNumber: d.TjNumber})
	}
	require.NoError(t, repo.ReplaceSnapshot(ctx, "2024-01-08", entries))

	return fixture{repo: repo, limiter: limiter}
}

func (f fixture) pipeline(gen Generator, cfg Config) *Pipeline {
	if cfg.DailyLimit == 0 {
		cfg.DailyLimit = 20
	}
	return NewPipeline(f.repo, f.limiter, gen, NewLocalLocker(), cfg, zap.NewNop())
}

func (f fixture) llmTitle(t *testing.T, tj string) *string {
	t.Helper()
	song, err := f.repo.SongByTjNumber(context.Background(), tj)
	require.NoError(t, err)
	require.NotNil(t, song)
	return song.TitleKoLLM
}

func (f fixture) usage(t *testing.T) int {
	t.Helper()
	used, err := f.limiter.TodayUsage(context.Background())
	require.NoError(t, err)
	return used
}

func TestSuggestStoresTitleAndChargesQuota(t *testing.T) {
	f := newFixture(t)
	gen := &spyGenerator{text: "  쏘아올린 불꽃\n"}

	result, err := f.pipeline(gen, Config{}).Suggest(context.Background(), " 68321 ")
	require.NoError(t, err)
	require.Equal(t, domain.SuggestionSuggested, result.Outcome)
	require.True(t, result.Applied())
	require.Equal(t, "쏘아올린 불꽃", result.Title)
	require.Equal(t, "spy", result.Provider)
	require.Equal(t, 1, result.Usage)

	expected, err := prompt.BuildTitleSuggestion("打上花火", "DAOKO×米津玄師")
	require.NoError(t, err)
	require.Equal(t, []string{expected}, gen.prompts)

	require.Equal(t, "쏘아올린 불꽃", *f.llmTitle(t, "68321"))
	require.Equal(t, 1, f.usage(t))
}

func TestQuotaReachedNeverCallsLLM(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := f.limiter.IncrementToday(ctx)
		require.NoError(t, err)
	}
	gen := &spyGenerator{text: "아이돌"}

	result, err := f.pipeline(gen, Config{DailyLimit: 20}).Suggest(ctx, "52587")
	require.NoError(t, err)
	require.Equal(t, domain.SuggestionQuotaExceeded, result.Outcome)
	require.Equal(t, 20, result.Usage)
	require.Zero(t, gen.calls())
	require.Nil(t, f.llmTitle(t, "52587"))
	require.Equal(t, 20, f.usage(t))
}

func TestGatingOutcomesLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		tj      string
		gen     *spyGenerator
		noGen   bool
		outcome domain.SuggestionOutcome
		llmCall bool
	}{
		{name: "blank tj", tj: "   ", gen: &spyGenerator{text: "x"}, outcome: domain.SuggestionInvalidRequest},
		{name: "no credential", tj: "52587", noGen: true, outcome: domain.SuggestionNotConfigured},
		{name: "unknown song", tj: "99999", gen: &spyGenerator{text: "x"}, outcome: domain.SuggestionSongNotFound},
		{name: "empty answer", tj: "52587", gen: &spyGenerator{text: " \n\t"}, outcome: domain.SuggestionEmptyResponse, llmCall: true},
		{name: "upstream error", tj: "52587", gen: &spyGenerator{err: errors.New("503 unavailable")}, outcome: domain.SuggestionUpstreamFailure, llmCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			var gen Generator
			if !tt.noGen {
				gen = tt.gen
			}
			result, err := f.pipeline(gen, Config{}).Suggest(context.Background(), tt.tj)
			require.NoError(t, err)
			require.Equal(t, tt.outcome, result.Outcome)
			require.False(t, result.Applied())

			if tt.gen != nil && !tt.noGen {
				require.Equal(t, tt.llmCall, tt.gen.calls() > 0)
			}
			require.Nil(t, f.llmTitle(t, "52587"))
			require.Zero(t, f.usage(t))
		})
	}
}

func TestSlowLLMTimesOut(t *testing.T) {
	f := newFixture(t)
	gen := &spyGenerator{block: true}

	started := time.Now()
	result, err := f.pipeline(gen, Config{Timeout: 20 * time.Millisecond}).Suggest(context.Background(), "52587")
	require.NoError(t, err)
	require.Equal(t, domain.SuggestionUpstreamFailure, result.Outcome)
	require.Less(t, time.Since(started), 5*time.Second)
	require.Zero(t, f.usage(t))
}

func TestConcurrentRequestForSameSongIsInFlight(t *testing.T) {
	f := newFixture(t)
	locker := NewLocalLocker()
	gen := &spyGenerator{text: "아이돌"}
	p := NewPipeline(f.repo, f.limiter, gen, locker, Config{DailyLimit: 20}, zap.NewNop())

	unlock, ok, err := locker.TryLock(context.Background(), "52587")
	require.NoError(t, err)
	require.True(t, ok)

	result, err := p.Suggest(context.Background(), "52587")
	require.NoError(t, err)
	require.Equal(t, domain.SuggestionInFlight, result.Outcome)
	require.Zero(t, gen.calls())

	unlock()
	result, err = p.Suggest(context.Background(), "52587")
	require.NoError(t, err)
	require.Equal(t, domain.SuggestionSuggested, result.Outcome)
	require.Equal(t, 1, f.usage(t))
}

type failingUsage struct{}

func (failingUsage) TodayUsage(context.Context) (int, error) {
	return 0, errors.New("database is locked")
}

func (failingUsage) IncrementToday(context.Context) (int, error) {
	return 0, errors.New("database is locked")
}

func TestStorageFailuresPropagate(t *testing.T) {
	f := newFixture(t)
	gen := &spyGenerator{text: "아이돌"}
	p := NewPipeline(f.repo, failingUsage{}, gen, nil, Config{DailyLimit: 20}, zap.NewNop())

	_, err := p.Suggest(context.Background(), "52587")
	require.Error(t, err)
	require.Zero(t, gen.calls())
}

func TestSuggestPendingStopsAtQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repo.SetSongLLMTitle(ctx, "68321", "쏘아올린 불꽃")
	require.NoError(t, err)

	gen := &spyGenerator{text: "제안"}
	results, err := f.pipeline(gen, Config{DailyLimit: 1, Workers: 1}).SuggestPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, results, 2, "songs with a suggestion are skipped")

	require.Equal(t, "52587", results[0].TjNumber)
	require.Equal(t, domain.SuggestionSuggested, results[0].Outcome)
	require.Equal(t, "68150", results[1].TjNumber)
	require.Equal(t, domain.SuggestionQuotaExceeded, results[1].Outcome)
	require.Equal(t, 1, gen.calls())
	require.Equal(t, 1, f.usage(t))
}

func TestSuggestPendingHonoursLimit(t *testing.T) {
	f := newFixture(t)
	gen := &spyGenerator{text: "제안"}

	results, err := f.pipeline(gen, Config{Workers: 2}).SuggestPending(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, domain.SuggestionSuggested, r.Outcome)
	}
	require.Equal(t, 2, f.usage(t))
}
