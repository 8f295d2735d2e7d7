package chart

import (
	"context"
	"strings"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/pkg/errors"
	"go.uber.org/zap"
)

// Ranges are the chart pages the site shows.
var Ranges = []domain.ChartRange{
	{Name: "1-50", Start: 1, End: 50},
	{Name: "51-100", Start: 51, End: 100},
}

// RangeByName resolves a page name such as "1-50".
func RangeByName(name string) (domain.ChartRange, bool) {
	for _, r := range Ranges {
		if r.Name == name {
			return r, true
		}
	}
	return domain.ChartRange{}, false
}

// Workflow holds the review actions an operator takes on pending songs.
type Workflow struct {
	repo   *Repository
	logger *zap.Logger
}

func NewWorkflow(repo *Repository, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{repo: repo, logger: logger}
}

// Confirm validates the final title and confirms the song. It reports false
// when no song has the given id.
func (w *Workflow) Confirm(ctx context.Context, id int64, finalTitle string) (bool, error) {
	if id <= 0 {
		return false, errors.NewValidationError("song id must be positive", "id", id)
	}
	finalTitle = strings.TrimSpace(finalTitle)
	if finalTitle == "" {
		return false, errors.NewValidationError("final title must not be empty", "title_ko_main", finalTitle)
	}

	affected, err := w.repo.ConfirmSong(ctx, id, finalTitle)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		w.logger.Warn("Confirm ignored, unknown song", zap.Int64("id", id))
	}
	return affected > 0, nil
}
