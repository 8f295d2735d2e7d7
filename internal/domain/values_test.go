package domain

import (
	"testing"
	"time"
)

func TestDayScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Day
	}{
		{"text", "2024-01-08", "2024-01-08"},
		{"bytes", []byte("2024-01-08"), "2024-01-08"},
		{"datetime text", "2024-01-08T00:00:00Z", "2024-01-08"},
		{"time value", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "2024-01-08"},
		{"null", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Day
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d != tt.want {
				t.Fatalf("got %q, want %q", d, tt.want)
			}
		})
	}

	var d Day
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for integer source")
	}
}

func TestParseDay(t *testing.T) {
	if d, err := ParseDay(" 2024-01-08 "); err != nil || d != "2024-01-08" {
		t.Fatalf("got %q, %v", d, err)
	}
	if _, err := ParseDay("2024-13-01"); err == nil {
		t.Fatalf("expected error for invalid month")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	original := NewTimestamp(time.Date(2024, 1, 8, 9, 30, 15, 123456789, seoul))

	value, err := original.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "2024-01-08 00:30:15.123456+00:00" {
		t.Fatalf("unexpected stored form %q", value)
	}

	var scanned Timestamp
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scanned.Equal(original.Time) {
		t.Fatalf("round trip changed instant: %v != %v", scanned, original)
	}
}

func TestTimestampScanLegacyForms(t *testing.T) {
	for _, src := range []any{
		"2024-01-08 00:30:15",
		"2024-01-08 00:30:15.5",
		[]byte("2024-01-08T00:30:15Z"),
		time.Date(2024, 1, 8, 9, 30, 15, 0, time.FixedZone("KST", 9*60*60)),
	} {
		var ts Timestamp
		if err := ts.Scan(src); err != nil {
			t.Fatalf("scan %v: %v", src, err)
		}
		if ts.Hour() != 0 || ts.Location() != time.UTC {
			t.Fatalf("scan %v: expected UTC 00h, got %v", src, ts.Time)
		}
	}
}

func TestDisplayFallbacks(t *testing.T) {
	song := Song{TitleJa: "打上花火", ArtistJa: "DAOKO×米津玄師"}
	if got := song.DisplayTitle(); got != "打上花火" {
		t.Fatalf("expected Japanese fallback, got %q", got)
	}

	song.TitleKoAuto = StringPtr("불꽃")
	song.TitleKoLLM = StringPtr("쏘아 올린 불꽃")
	if got := song.DisplayTitle(); got != "쏘아 올린 불꽃" {
		t.Fatalf("expected LLM title over auto title, got %q", got)
	}

	song.TitleKoMain = StringPtr("쏘아올린 불꽃")
	if got := song.DisplayTitle(); got != "쏘아올린 불꽃" {
		t.Fatalf("expected confirmed title, got %q", got)
	}

	if StringPtr("") != nil {
		t.Fatalf("blank strings must map to nil")
	}
}
