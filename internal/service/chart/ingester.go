package chart

import (
	"context"
	"fmt"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"go.uber.org/zap"
)

// ArtistResolver maps a Japanese artist name to the Korean name shown to readers.
type ArtistResolver interface {
	ResolveArtist(artistJa string) *string
}

// TitleTranslator renders Japanese chart text in Korean.
type TitleTranslator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Ingester records one day's chart: unseen songs become pending rows and the
// day's ranks are replaced.
type Ingester struct {
	repo       *Repository
	artists    ArtistResolver
	translator TitleTranslator
	logger     *zap.Logger
}

func NewIngester(repo *Repository, artists ArtistResolver, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{repo: repo, artists: artists, logger: logger}
}

// WithTranslator sets the translator used to fill title_ko_auto, and artist_ko
// when no alias matches, for songs seen for the first time.
func (i *Ingester) WithTranslator(translator TitleTranslator) *Ingester {
	i.translator = translator
	return i
}

func (i *Ingester) Ingest(ctx context.Context, day domain.Day, entries []domain.ChartEntry) (domain.IngestReport, error) {
	report := domain.IngestReport{Date: day}

	if err := validateEntries(entries); err != nil {
		return report, err
	}

	for _, entry := range entries {
		draft := domain.SongDraft{
			TjNumber:    entry.TjNumber,
			TitleJa:     entry.TitleJa,
			ArtistJa:    entry.ArtistJa,
			TitleKoAuto: domain.StringPtr(entry.TitleKo),
			ArtistKo:    domain.StringPtr(entry.ArtistKo),
		}
		if draft.ArtistKo == nil && i.artists != nil {
			draft.ArtistKo = i.artists.ResolveArtist(entry.ArtistJa)
		}
		if draft.TitleKoAuto == nil || draft.ArtistKo == nil {
			existing, err := i.repo.SongByTjNumber(ctx, entry.TjNumber)
			if err != nil {
				return report, err
			}
			// 이미 등록된 곡은 번역하지 않음
			if existing == nil {
				if draft.TitleKoAuto == nil {
					draft.TitleKoAuto = i.translate(ctx, entry.TitleJa)
				}
				if draft.ArtistKo == nil {
					draft.ArtistKo = i.translate(ctx, entry.ArtistJa)
				}
			}
		}

		created, err := i.repo.UpsertSong(ctx, draft)
		if err != nil {
			return report, err
		}
		if created {
			report.NewSongs++
			i.logger.Info("New chart song",
				zap.Int("rank", entry.Rank),
				zap.String("tj_number", entry.TjNumber),
				zap.String("title_ja", entry.TitleJa),
			)
		}
	}

	if err := i.repo.ReplaceSnapshot(ctx, day, entries); err != nil {
		return report, err
	}
	report.RankedSongs = len(entries)

	counts, err := i.repo.CountSongs(ctx)
	if err != nil {
		return report, fmt.Errorf("chart recorded but counting failed: %w", err)
	}
	report.TotalSongs = counts.Total
	report.PendingSongs = counts.Pending

	i.logger.Info("Chart ingested",
		zap.String("date", day.String()),
		zap.Int("ranked", report.RankedSongs),
		zap.Int("new_songs", report.NewSongs),
		zap.Int("total_songs", report.TotalSongs),
		zap.Int("pending_songs", report.PendingSongs),
	)
	return report, nil
}

// translate passes ASCII text through and returns nil when no translation is
// available, leaving the column NULL.
func (i *Ingester) translate(ctx context.Context, text string) *string {
	if text == "" {
		return nil
	}
	if util.IsASCII(text) {
		return domain.StringPtr(text)
	}
	if i.translator == nil {
		return nil
	}

	translated, err := i.translator.Translate(ctx, text)
	if err != nil {
		i.logger.Warn("Translation failed",
			zap.String("text", text),
			zap.Error(err),
		)
		return nil
	}
	return domain.StringPtr(translated)
}
