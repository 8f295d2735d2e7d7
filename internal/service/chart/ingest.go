package chart

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/pkg/errors"
)

// UpsertSong inserts a newly seen song as pending. Existing rows, including
// reviewed titles, are left alone; created reports whether a row was added.
func (r *Repository) UpsertSong(ctx context.Context, draft domain.SongDraft) (bool, error) {
	if strings.TrimSpace(draft.TjNumber) == "" {
		return false, errors.NewValidationError("tj_number is required", "tj_number", draft.TjNumber)
	}
	if strings.TrimSpace(draft.TitleJa) == "" {
		return false, errors.NewValidationError("title_ja is required", "title_ja", draft.TitleJa)
	}

	now := r.timestamp()
	res, err := r.db.Execute(ctx, `
		INSERT INTO songs (tj_number, title_ja, title_ko_auto, artist_ja, artist_ko, is_confirmed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tj_number) DO NOTHING
	`, draft.TjNumber, draft.TitleJa, draft.TitleKoAuto, draft.ArtistJa, draft.ArtistKo, false, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to upsert song %s: %w", draft.TjNumber, err)
	}
	return res.RowsAffected > 0, nil
}

// ReplaceSnapshot swaps the ranks recorded for day with entries. Every entry
// must reference an existing song.
func (r *Repository) ReplaceSnapshot(ctx context.Context, day domain.Day, entries []domain.ChartEntry) error {
	if _, err := domain.ParseDay(day.String()); err != nil {
		return errors.NewValidationError("invalid chart date", "date", day.String())
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	if err := r.db.Run(ctx, `DELETE FROM daily_charts WHERE date = ?`, day); err != nil {
		return fmt.Errorf("failed to clear chart %s: %w", day, err)
	}
	if len(entries) == 0 {
		return nil
	}

	now := r.timestamp()
	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*4)
	for _, entry := range entries {
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		args = append(args, day, entry.TjNumber, entry.Rank, now)
	}

	query := `INSERT INTO daily_charts (date, tj_number, rank, created_at) VALUES ` + strings.Join(placeholders, ", ")
	if err := r.db.Run(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record chart %s: %w", day, err)
	}
	return nil
}

func validateEntries(entries []domain.ChartEntry) error {
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.Rank <= 0 {
			return errors.NewValidationError("rank must be positive", "rank", entry.Rank)
		}
		if strings.TrimSpace(entry.TjNumber) == "" {
			return errors.NewValidationError("tj_number is required", "tj_number", entry.TjNumber)
		}
		if other, dup := seen[entry.Rank]; dup {
			return errors.NewValidationError(
				fmt.Sprintf("rank %d assigned to both %s and %s", entry.Rank, other, entry.TjNumber),
				"rank", entry.Rank)
		}
		seen[entry.Rank] = entry.TjNumber
	}
	return nil
}

// CountSongs reports the catalogue size and how many songs await review.
func (r *Repository) CountSongs(ctx context.Context) (domain.SongCounts, error) {
	var counts domain.SongCounts
	_, err := r.db.Get(ctx, &counts, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN is_confirmed = ? THEN 1 ELSE 0 END), 0) AS pending
		FROM songs
	`, false)
	if err != nil {
		return domain.SongCounts{}, fmt.Errorf("failed to count songs: %w", err)
	}
	return counts, nil
}
