package prompt

import (
	"strings"
	"testing"
)

func TestBuildTranslation(t *testing.T) {
	got, err := BuildTranslation("怪獣の花唄")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "다음 일본어를 자연스러운 한국어로 번역하세요.\n") {
		t.Fatalf("unexpected prompt head: %q", got)
	}
	if !strings.HasSuffix(got, "\n\n怪獣の花唄") {
		t.Fatalf("prompt must end with the source text, got %q", got)
	}
}
