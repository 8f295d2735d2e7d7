package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/service/database"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"go.uber.org/zap"
)

// Limiter counts LLM calls per UTC day in the llm_usage table.
type Limiter struct {
	db      database.Adapter
	backend database.Backend
	logger  *zap.Logger
	now     func() time.Time

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewLimiter(db database.Adapter, backend database.Backend, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		db:      db,
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock that decides the current day.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// EnsureSchema creates llm_usage if missing. A failed attempt is retried on the next call.
func (l *Limiter) EnsureSchema(ctx context.Context) error {
	l.schemaMu.Lock()
	defer l.schemaMu.Unlock()

	if l.schemaReady {
		return nil
	}
	if err := l.db.Run(ctx, database.UsageTableDDL(l.backend)); err != nil {
		return fmt.Errorf("failed to create llm_usage: %w", err)
	}
	l.schemaReady = true
	return nil
}

// Today is the day key counters are currently charged to.
func (l *Limiter) Today() string {
	return util.DayKey(l.now())
}

// Usage returns the count recorded for day, zero when no row exists.
func (l *Limiter) Usage(ctx context.Context, day string) (int, error) {
	var row struct {
		Count int `db:"count"`
	}
	found, err := l.db.Get(ctx, &row, `SELECT count FROM llm_usage WHERE day = ?`, day)
	if err != nil {
		return 0, fmt.Errorf("failed to read llm usage for %s: %w", day, err)
	}
	if !found {
		return 0, nil
	}
	return row.Count, nil
}

func (l *Limiter) TodayUsage(ctx context.Context) (int, error) {
	return l.Usage(ctx, l.Today())
}

// Increment adds one to day's counter in a single statement and returns the
// new count. Concurrent callers never lose an update.
func (l *Limiter) Increment(ctx context.Context, day string) (int, error) {
	var row struct {
		Count int `db:"count"`
	}
	_, err := l.db.Get(ctx, &row, `
		INSERT INTO llm_usage (day, count, created_at)
		VALUES (?, 1, ?)
		ON CONFLICT(day) DO UPDATE SET count = llm_usage.count + 1
		RETURNING count
	`, day, domain.NewTimestamp(l.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to increment llm usage for %s: %w", day, err)
	}

	l.logger.Debug("LLM usage incremented",
		zap.String("day", day),
		zap.Int("count", row.Count),
	)
	return row.Count, nil
}

func (l *Limiter) IncrementToday(ctx context.Context) (int, error) {
	return l.Increment(ctx, l.Today())
}

// Exceeded reports whether today's usage has reached limit, with the usage it saw.
func (l *Limiter) Exceeded(ctx context.Context, limit int) (int, bool, error) {
	used, err := l.TodayUsage(ctx)
	if err != nil {
		return 0, false, err
	}
	return used, used >= limit, nil
}
