package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingProvider struct {
	stubProvider
	prompts []string
}

func (r *recordingProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	r.prompts = append(r.prompts, prompt)
	return r.stubProvider.Generate(ctx, prompt)
}

func TestTranslateKeepsFirstLine(t *testing.T) {
	primary := &recordingProvider{stubProvider: stubProvider{name: "Gemini", text: "괴수의 꽃노래\n(Vaundy의 곡)"}}
	translator := NewTranslator(newModelManager(primary, nil, zap.NewNop()), time.Second, zap.NewNop())

	got, err := translator.Translate(context.Background(), "怪獣の花唄")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "괴수의 꽃노래" {
		t.Fatalf("unexpected translation %q", got)
	}
	if len(primary.prompts) != 1 || !strings.HasSuffix(primary.prompts[0], "\n\n怪獣の花唄") {
		t.Fatalf("unexpected prompts: %q", primary.prompts)
	}
}

func TestTranslateReportsProviderErrors(t *testing.T) {
	primary := &stubProvider{name: "Gemini", err: errors.New("invalid argument")}
	translator := NewTranslator(newModelManager(primary, nil, zap.NewNop()), time.Second, zap.NewNop())

	if _, err := translator.Translate(context.Background(), "唱"); err == nil {
		t.Fatalf("expected error from failing provider")
	}
}
