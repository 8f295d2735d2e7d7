package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
)

// OpenRemote connects to the managed database. postgres:// URLs go through
// lib/pq with the token as password; anything else is treated as libSQL.
func OpenRemote(ctx context.Context, rawURL, authToken string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid remote database url: %w", err)
	}

	backend := remoteBackend(parsed)
	var dsn string
	switch backend {
	case BackendPostgres:
		dsn = postgresDSN(parsed, authToken)
	default:
		dsn = libsqlDSN(parsed, authToken)
	}

	db, err := sqlx.Open(driverName(backend), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", backend, err)
	}

	configurePool(db, constants.DatabaseConfig.MaxOpenConns)

	if err := pingWithTimeout(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", backend, err)
	}

	logger.Info("Remote database connected",
		zap.String("backend", backend.String()),
		zap.String("host", parsed.Host),
	)

	return newStore(db, backend, logger), nil
}

func remoteBackend(u *url.URL) Backend {
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return BackendPostgres
	default:
		return BackendLibSQL
	}
}

func driverName(b Backend) string {
	switch b {
	case BackendPostgres:
		return "postgres"
	case BackendLibSQL:
		return "libsql"
	default:
		return "sqlite"
	}
}

func postgresDSN(u *url.URL, token string) string {
	copied := *u
	if token != "" {
		username := "postgres"
		if copied.User != nil && copied.User.Username() != "" {
			username = copied.User.Username()
		}
		copied.User = url.UserPassword(username, token)
	}
	return copied.String()
}

func libsqlDSN(u *url.URL, token string) string {
	copied := *u
	query := copied.Query()
	if token != "" {
		query.Set("authToken", token)
	}
	copied.RawQuery = query.Encode()
	return copied.String()
}
