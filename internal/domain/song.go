package domain

// Song is one catalogue entry keyed externally by its TJ number.
type Song struct {
	ID          int64     `db:"id" json:"id"`
	TjNumber    string    `db:"tj_number" json:"tj_number"`
	TitleJa     string    `db:"title_ja" json:"title_ja"`
	TitleKoMain *string   `db:"title_ko_main" json:"title_ko_main,omitempty"`
	TitleKoAuto *string   `db:"title_ko_auto" json:"title_ko_auto,omitempty"`
	TitleKoLLM  *string   `db:"title_ko_llm" json:"title_ko_llm,omitempty"`
	ArtistJa    string    `db:"artist_ja" json:"artist_ja"`
	ArtistKo    *string   `db:"artist_ko" json:"artist_ko,omitempty"`
	IsConfirmed bool      `db:"is_confirmed" json:"is_confirmed"`
	CreatedAt   Timestamp `db:"created_at" json:"created_at"`
	UpdatedAt   Timestamp `db:"updated_at" json:"updated_at"`
}

// DisplayTitle picks the best Korean title available, falling back to the original.
func (s *Song) DisplayTitle() string {
	for _, candidate := range []*string{s.TitleKoMain, s.TitleKoLLM, s.TitleKoAuto} {
		if candidate != nil && *candidate != "" {
			return *candidate
		}
	}
	return s.TitleJa
}

// DisplayArtist prefers the Korean artist name when known.
func (s *Song) DisplayArtist() string {
	if s.ArtistKo != nil && *s.ArtistKo != "" {
		return *s.ArtistKo
	}
	return s.ArtistJa
}

// RankedSong is a song joined to its snapshot on the latest chart date.
// Rank is nil for pending songs that are off the current chart.
type RankedSong struct {
	Song
	Rank *int `db:"rank" json:"rank"`
	Date *Day `db:"date" json:"date,omitempty"`
}

// SongDraft is a newly observed chart song before review.
type SongDraft struct {
	TjNumber    string
	TitleJa     string
	ArtistJa    string
	TitleKoAuto *string
	ArtistKo    *string
}

// StringPtr returns nil for blank strings so optional columns stay NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
