package chart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/service/database"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"go.uber.org/zap"
)

const songColumns = `s.id, s.tj_number, s.title_ja, s.title_ko_main, s.title_ko_auto, s.title_ko_llm,
		s.artist_ja, s.artist_ko, s.is_confirmed, s.created_at, s.updated_at`

// Repository answers chart and song queries. Every read is anchored on the
// latest date present in daily_charts, never on the wall clock.
type Repository struct {
	db     database.Adapter
	logger *zap.Logger
	now    func() time.Time
}

func NewRepository(db database.Adapter, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for updated_at.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

func (r *Repository) timestamp() domain.Timestamp {
	return domain.NewTimestamp(r.now())
}

// LatestDate returns the newest chart date; false means no chart was ever loaded.
func (r *Repository) LatestDate(ctx context.Context) (domain.Day, bool, error) {
	var row struct {
		LatestDate *domain.Day `db:"latest_date"`
	}
	found, err := r.db.Get(ctx, &row, `SELECT MAX(date) AS latest_date FROM daily_charts`)
	if err != nil {
		return "", false, fmt.Errorf("failed to query latest chart date: %w", err)
	}
	if !found || row.LatestDate == nil || *row.LatestDate == "" {
		return "", false, nil
	}
	return *row.LatestDate, true, nil
}

// ConfirmedSongsByRange lists confirmed songs ranked start..end (inclusive)
// on the latest chart, ordered by rank.
func (r *Repository) ConfirmedSongsByRange(ctx context.Context, start, end int) ([]domain.RankedSong, error) {
	latest, ok, err := r.LatestDate(ctx)
	if err != nil || !ok {
		return []domain.RankedSong{}, err
	}

	query := `
		SELECT ` + songColumns + `, w.rank, w.date
		FROM songs s
		INNER JOIN daily_charts w ON s.tj_number = w.tj_number
		WHERE s.is_confirmed = ?
		  AND w.date = ?
		  AND w.rank >= ?
		  AND w.rank <= ?
		ORDER BY w.rank ASC
	`

	songs := []domain.RankedSong{}
	if err := r.db.All(ctx, &songs, query, true, latest, start, end); err != nil {
		return nil, fmt.Errorf("failed to query chart range %d-%d: %w", start, end, err)
	}
	return songs, nil
}

// SearchSongs matches confirmed songs on the latest chart whose titles or
// artists contain query, case-insensitively. A blank query never hits storage.
func (r *Repository) SearchSongs(ctx context.Context, query string) ([]domain.RankedSong, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RankedSong{}, nil
	}

	latest, ok, err := r.LatestDate(ctx)
	if err != nil || !ok {
		return []domain.RankedSong{}, err
	}

	// both sides go through the backend's LOWER so an exact substring always matches
	pattern := "%" + util.EscapeLike(query) + "%"
	stmt := `
		SELECT ` + songColumns + `, w.rank, w.date
		FROM songs s
		INNER JOIN daily_charts w ON s.tj_number = w.tj_number
		WHERE s.is_confirmed = ?
		  AND w.date = ?
		  AND (
			LOWER(s.title_ko_main) LIKE LOWER(?) ESCAPE '\' OR
			LOWER(s.title_ko_auto) LIKE LOWER(?) ESCAPE '\' OR
			LOWER(s.title_ko_llm) LIKE LOWER(?) ESCAPE '\' OR
			LOWER(s.title_ja) LIKE LOWER(?) ESCAPE '\' OR
			LOWER(s.artist_ko) LIKE LOWER(?) ESCAPE '\' OR
			LOWER(s.artist_ja) LIKE LOWER(?) ESCAPE '\'
		  )
		ORDER BY w.rank ASC
	`

	songs := []domain.RankedSong{}
	err = r.db.All(ctx, &songs, stmt, true, latest,
		pattern, pattern, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}

	r.logger.Debug("Song search",
		zap.String("query", util.TruncateString(query, 50)),
		zap.Int("results", len(songs)),
	)
	return songs, nil
}

// PendingSongs lists unconfirmed songs with their rank on the latest chart.
// Songs that fell off the chart are still listed, with a nil Rank.
func (r *Repository) PendingSongs(ctx context.Context) ([]domain.RankedSong, error) {
	latest, ok, err := r.LatestDate(ctx)
	if err != nil || !ok {
		return []domain.RankedSong{}, err
	}

	// NULL ranks sort by the backend's default (first in SQLite, last in postgres)
	query := `
		SELECT ` + songColumns + `, w.rank, w.date
		FROM songs s
		LEFT JOIN daily_charts w ON s.tj_number = w.tj_number AND w.date = ?
		WHERE s.is_confirmed = ?
		ORDER BY w.rank ASC, s.id ASC
	`

	songs := []domain.RankedSong{}
	if err := r.db.All(ctx, &songs, query, latest, false); err != nil {
		return nil, fmt.Errorf("failed to query pending songs: %w", err)
	}
	return songs, nil
}

// SongByTjNumber returns nil when the TJ number is unknown.
func (r *Repository) SongByTjNumber(ctx context.Context, tjNumber string) (*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs s WHERE s.tj_number = ?`

	var song domain.Song
	found, err := r.db.Get(ctx, &song, query, tjNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query song by tj_number: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &song, nil
}

// SongByID returns nil when the id is unknown.
func (r *Repository) SongByID(ctx context.Context, id int64) (*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs s WHERE s.id = ?`

	var song domain.Song
	found, err := r.db.Get(ctx, &song, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query song by id: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &song, nil
}

// SetSongLLMTitle stores an LLM suggestion. An unknown TJ number affects zero rows.
func (r *Repository) SetSongLLMTitle(ctx context.Context, tjNumber, title string) (int64, error) {
	res, err := r.db.Execute(ctx, `
		UPDATE songs
		SET title_ko_llm = ?, updated_at = ?
		WHERE tj_number = ?
	`, title, r.timestamp(), tjNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to set llm title: %w", err)
	}
	return res.RowsAffected, nil
}

// ConfirmSong fixes the final Korean title and marks the song confirmed.
// There is no way back to pending. The title is not validated here.
func (r *Repository) ConfirmSong(ctx context.Context, id int64, finalTitle string) (int64, error) {
	res, err := r.db.Execute(ctx, `
		UPDATE songs
		SET title_ko_main = ?, is_confirmed = ?, updated_at = ?
		WHERE id = ?
	`, finalTitle, true, r.timestamp(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm song: %w", err)
	}

	if res.RowsAffected > 0 {
		r.logger.Info("Song confirmed",
			zap.Int64("id", id),
			zap.String("title_ko_main", finalTitle),
		)
	}
	return res.RowsAffected, nil
}
