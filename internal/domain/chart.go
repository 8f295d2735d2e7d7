package domain

// ChartEntry is one rank on one chart date.
type ChartEntry struct {
	Rank     int    `yaml:"rank" json:"rank"`
	TjNumber string `yaml:"tj_number" json:"tj_number"`
	TitleJa  string `yaml:"title_ja" json:"title_ja"`
	ArtistJa string `yaml:"artist_ja" json:"artist_ja"`
	TitleKo  string `yaml:"title_ko,omitempty" json:"title_ko,omitempty"`
	ArtistKo string `yaml:"artist_ko,omitempty" json:"artist_ko,omitempty"`
}

// ChartRange is a named rank window shown as one chart page.
type ChartRange struct {
	Name  string
	Start int
	End   int
}

// SongCounts summarizes the catalogue after an ingest.
type SongCounts struct {
	Total   int `db:"total"`
	Pending int `db:"pending"`
}

// IngestReport describes what one chart ingest changed.
type IngestReport struct {
	Date         Day
	NewSongs     int
	RankedSongs  int
	TotalSongs   int
	PendingSongs int
}
