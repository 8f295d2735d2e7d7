package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/prompt"
	"go.uber.org/zap"
)

// Translator produces the machine-translated Korean drafts stored with newly
// crawled songs. It shares the model manager, and its circuit breaker, with
// title suggestions.
type Translator struct {
	models  *ModelManager
	timeout time.Duration
	logger  *zap.Logger
}

func NewTranslator(models *ModelManager, timeout time.Duration, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{models: models, timeout: timeout, logger: logger}
}

// Translate returns the Korean rendering of text. An empty answer is
// returned as "" with no error.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	p, err := prompt.BuildTranslation(text)
	if err != nil {
		return "", err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	gen, err := t.models.GenerateText(ctx, p)
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", text, err)
	}

	// 모델이 설명을 덧붙여도 첫 줄만 사용
	line, _, _ := strings.Cut(gen.Text, "\n")
	line = strings.TrimSpace(line)
	t.logger.Debug("Chart text translated",
		zap.String("source", text),
		zap.String("translation", line),
		zap.String("provider", gen.Provider),
	)
	return line, nil
}
