package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
)

func TestReadChartFile(t *testing.T) {
	input := `
date: 2024-01-08
entries:
  - rank: 1
    tj_number: "68321"
    title_ja: 打上花火
    artist_ja: DAOKO×米津玄師
  - rank: 2
    tj_number: "52587"
    title_ja: アイドル
    artist_ja: YOASOBI
    title_ko: 아이돌
`
	day, entries, err := readChartFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != "2024-01-08" {
		t.Fatalf("unexpected day %q", day)
	}
	if len(entries) != 2 || entries[1].TitleKo != "아이돌" || entries[0].TjNumber != "68321" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadChartFileRejectsBadInput(t *testing.T) {
	for _, input := range []string{
		"date: 2024-13-01\nentries:\n  - rank: 1\n    tj_number: \"1\"\n",
		"date: 2024-01-08\nentries: []\n",
		"date: [\n",
	} {
		if _, _, err := readChartFile(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestWriteSongsFallsBackToOriginal(t *testing.T) {
	rank := 3
	confirmed := "쏘아올린 불꽃"
	var buf bytes.Buffer
	writeSongs(&buf, []domain.RankedSong{
		{Song: domain.Song{TjNumber: "68321", TitleJa: "打上花火", ArtistJa: "DAOKO×米津玄師", TitleKoMain: &confirmed}, Rank: &rank},
		{Song: domain.Song{TjNumber: "52601", TitleJa: "唱", ArtistJa: "Ado"}},
	})

	out := buf.String()
	for _, want := range []string{"쏘아올린 불꽃", "68321", "唱", "Ado", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSuggestionDescribesOutcome(t *testing.T) {
	var buf bytes.Buffer
	writeSuggestion(&buf, domain.SuggestionResult{TjNumber: "52587", Outcome: domain.SuggestionQuotaExceeded, Usage: 20, Quota: 20})
	writeSuggestion(&buf, domain.SuggestionResult{TjNumber: "52587", Outcome: domain.SuggestionSuggested, Title: "아이돌", Provider: "Gemini", Usage: 1, Quota: 20})

	out := buf.String()
	if !strings.Contains(out, "20/20") || !strings.Contains(out, "아이돌 (Gemini, 1/20)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
