package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"go.uber.org/zap"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	s.calls++
	if s.err != nil {
		return ProviderResult{}, s.err
	}
	return ProviderResult{Text: s.text, Model: s.name + "-model"}, nil
}

func TestGenerateTextUsesPrimary(t *testing.T) {
	primary := &stubProvider{name: "Gemini", text: "  쏘아올린 불꽃\n"}
	fallback := &stubProvider{name: "OpenAI", text: "unused"}
	mm := newModelManager(primary, fallback, zap.NewNop())

	gen, err := mm.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Text != "쏘아올린 불꽃" || gen.Provider != "Gemini" || gen.UsedFallback {
		t.Fatalf("unexpected generation: %+v", gen)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not be called when primary succeeds")
	}
}

func TestGenerateTextFallsBack(t *testing.T) {
	primary := &stubProvider{name: "Gemini", err: errors.New("googleapi: Error 503: overloaded")}
	fallback := &stubProvider{name: "OpenAI", text: "아이돌"}
	mm := newModelManager(primary, fallback, zap.NewNop())

	gen, err := mm.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Provider != "OpenAI" || !gen.UsedFallback || gen.Text != "아이돌" {
		t.Fatalf("unexpected generation: %+v", gen)
	}
}

func TestEmptyAnswerIsNotAnError(t *testing.T) {
	mm := newModelManager(&stubProvider{name: "Gemini", text: "   "}, nil, zap.NewNop())

	gen, err := mm.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Text != "" {
		t.Fatalf("expected blank text, got %q", gen.Text)
	}
}

func TestCircuitOpensAfterRepeatedOutages(t *testing.T) {
	primary := &stubProvider{name: "Gemini", err: errors.New("502 Bad Gateway")}
	mm := newModelManager(primary, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := mm.GenerateText(ctx, "prompt"); err == nil {
			t.Fatalf("expected upstream error")
		}
	}
	if mm.CircuitState() != util.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", mm.CircuitState())
	}

	_, err := mm.GenerateText(ctx, "prompt")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if primary.calls != 3 {
		t.Fatalf("open circuit must not call the provider, calls=%d", primary.calls)
	}

	mm.ResetCircuit()
	if mm.CircuitState() != util.CircuitStateClosed {
		t.Fatalf("expected closed circuit after reset")
	}
}

func TestRequestErrorsDoNotOpenCircuit(t *testing.T) {
	primary := &stubProvider{name: "Gemini", err: errors.New("400 invalid argument")}
	mm := newModelManager(primary, nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = mm.GenerateText(context.Background(), "prompt")
	}
	if mm.CircuitState() != util.CircuitStateClosed {
		t.Fatalf("client errors must not open the circuit")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		msg       string
		service   bool
		rateLimit bool
	}{
		{"429 Too Many Requests", true, true},
		{`{"error":{"code":429,"message":"quota"}}`, true, true},
		{`{"error":{"code":500}}`, true, false},
		{"request timeout", true, false},
		{"400 invalid argument", false, false},
		{`{"error":{"code":403}}`, false, false},
	}

	for _, tt := range tests {
		err := errors.New(tt.msg)
		if got := isServiceFailure(err); got != tt.service {
			t.Errorf("isServiceFailure(%q) = %v, want %v", tt.msg, got, tt.service)
		}
		if got := isRateLimitError(err); got != tt.rateLimit {
			t.Errorf("isRateLimitError(%q) = %v, want %v", tt.msg, got, tt.rateLimit)
		}
	}
	if !isServiceFailure(context.DeadlineExceeded) {
		t.Errorf("deadline exceeded must count as an outage")
	}
}
