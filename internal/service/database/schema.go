package database

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tj_number TEXT NOT NULL UNIQUE,
		title_ja TEXT NOT NULL,
		title_ko_main TEXT,
		title_ko_auto TEXT,
		title_ko_llm TEXT,
		artist_ja TEXT NOT NULL,
		artist_ko TEXT,
		is_confirmed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_is_confirmed ON songs(is_confirmed)`,
	`CREATE TABLE IF NOT EXISTS daily_charts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATE NOT NULL,
		tj_number TEXT NOT NULL REFERENCES songs(tj_number),
		rank INTEGER NOT NULL CHECK (rank > 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_daily_charts_date_rank ON daily_charts(date, rank)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_charts_date_tj ON daily_charts(date, tj_number)`,
	`CREATE TABLE IF NOT EXISTS llm_usage (
		day TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS songs (
		id BIGSERIAL PRIMARY KEY,
		tj_number TEXT NOT NULL UNIQUE,
		title_ja TEXT NOT NULL,
		title_ko_main TEXT,
		title_ko_auto TEXT,
		title_ko_llm TEXT,
		artist_ja TEXT NOT NULL,
		artist_ko TEXT,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_is_confirmed ON songs(is_confirmed)`,
	`CREATE TABLE IF NOT EXISTS daily_charts (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		tj_number TEXT NOT NULL REFERENCES songs(tj_number),
		rank INTEGER NOT NULL CHECK (rank > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_daily_charts_date_rank ON daily_charts(date, rank)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_charts_date_tj ON daily_charts(date, tj_number)`,
	`CREATE TABLE IF NOT EXISTS llm_usage (
		day TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// UsageTableDDL is the counter table alone, for callers that bootstrap it
// separately from the chart schema.
func UsageTableDDL(b Backend) string {
	statements := schemaFor(b)
	return statements[len(statements)-1]
}

func schemaFor(b Backend) []string {
	if b == BackendPostgres {
		return postgresSchema
	}
	// libSQL speaks the SQLite dialect
	return sqliteSchema
}
