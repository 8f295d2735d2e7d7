package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrCircuitOpen is returned while the breaker is refusing upstream calls.
var ErrCircuitOpen = errors.New("AI service unavailable: circuit open")

var (
	statusCodeRegex = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodeRegex = regexp.MustCompile(`"code":(\d{3})`)
	openaiCodeRegex = regexp.MustCompile(`^(\d{3})\s`)
)

// Generation is a model answer with the provider that produced it.
type Generation struct {
	Text         string
	Provider     string
	Model        string
	UsedFallback bool
}

// ModelManager sends prompts to Gemini and, when enabled, falls back to
// OpenAI. Repeated upstream outages open a circuit breaker.
type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	EnableFallback bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	geminiModel := cfg.GeminiModel
	if geminiModel == "" {
		geminiModel = constants.LLMConfig.DefaultGeminiModel
	}
	openaiModel := cfg.OpenAIModel
	if openaiModel == "" {
		openaiModel = constants.LLMConfig.DefaultOpenAIModel
	}

	var fallback TextProvider
	if cfg.EnableFallback {
		if openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, openaiModel, logger); openaiProvider != nil {
			fallback = openaiProvider
			logger.Info("OpenAI fallback enabled", zap.String("model", openaiModel))
		}
	}
	if fallback == nil {
		logger.Info("OpenAI fallback disabled")
	}

	return newModelManager(NewGeminiProvider(geminiClient, geminiModel, logger), fallback, logger), nil
}

func newModelManager(primary, fallback TextProvider, logger *zap.Logger) *ModelManager {
	return &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		circuitBreaker: util.NewCircuitBreaker(
			"llm",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
	}
}

// GenerateText returns the trimmed model answer. An empty answer is not an
// error; callers decide what a blank suggestion means.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string) (Generation, error) {
	if !mm.circuitBreaker.CanExecute() {
		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", mm.circuitBreaker.State().String()),
		)
		return Generation{}, ErrCircuitOpen
	}

	primaryResult, primaryErr := mm.invokeProvider(ctx, mm.primary, prompt)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return Generation{
			Text:     strings.TrimSpace(primaryResult.Text),
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	// Primary 실패 시 Fallback 시도 (타임아웃이면 생략)
	if mm.fallback != nil && ctx.Err() == nil {
		fallbackResult, fallbackErr := mm.invokeProvider(ctx, mm.fallback, prompt)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return Generation{
				Text:         strings.TrimSpace(fallbackResult.Text),
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)
		return Generation{}, fmt.Errorf("all providers failed: %w", errors.Join(primaryErr, fallbackErr))
	}

	mm.recordFailure(primaryErr)
	return Generation{}, primaryErr
}

func (mm *ModelManager) invokeProvider(ctx context.Context, provider TextProvider, prompt string) (ProviderResult, error) {
	if provider == nil {
		return ProviderResult{}, fmt.Errorf("model provider is not configured")
	}
	return provider.Generate(ctx, prompt)
}

func (mm *ModelManager) recordFailure(err error) {
	// 요청 오류(400 등)는 Circuit에 반영하지 않음
	if !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		// 429는 쿼터 리셋까지 길게 대기
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) CircuitState() util.CircuitState {
	return mm.circuitBreaker.State()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// isServiceFailure separates upstream outages from request problems; only
// outages count toward opening the circuit.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}

	if isRateLimitError(err) {
		return true
	}

	if statusCodeRegex.MatchString(msg) {
		return true
	}

	if code, ok := upstreamCode(msg); ok {
		return code >= 500 && code < 600
	}

	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	if code, ok := upstreamCode(msg); ok {
		return code == 429
	}

	return false
}

func upstreamCode(msg string) (int, bool) {
	for _, re := range []*regexp.Regexp{geminiCodeRegex, openaiCodeRegex} {
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}
