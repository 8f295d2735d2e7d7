package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	sqlite "modernc.org/sqlite"
)

func init() {
	// 내장 lower()는 ASCII만 소문자로 바꾼다. 전각/악센트 라틴 문자도 접도록 교체
	_ = sqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

// unicodeLower replaces SQLite's built-in lower() so case-insensitive search
// folds non-ASCII letters the way postgres does.
func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

// OpenSQLite opens (creating if needed) the embedded database file and
// switches it to WAL journaling.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, busyTimeoutMillis())
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// single writer; also keeps ":memory:" on one connection
	configurePool(db, 1)

	if err := pingWithTimeout(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	var journalMode string
	if err := db.GetContext(ctx, &journalMode, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	logger.Info("SQLite opened",
		zap.String("path", path),
		zap.String("journal_mode", journalMode),
	)

	return newStore(db, BackendSQLite, logger), nil
}
