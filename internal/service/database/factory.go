package database

import (
	"context"

	"github.com/kapu/tj-jpop-chart-go/internal/config"
	"go.uber.org/zap"
)

// Open picks the backend once from configuration: remote when both the URL
// and the token are present, the embedded file otherwise. There is no
// fallback from one to the other.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if cfg.UseRemote() {
		return OpenRemote(ctx, cfg.RemoteURL, cfg.AuthToken, logger)
	}
	if cfg.RemoteURL != "" && logger != nil {
		logger.Warn("TURSO_DATABASE_URL set without TURSO_AUTH_TOKEN, using embedded database",
			zap.String("path", cfg.Path))
	}
	return OpenSQLite(ctx, cfg.Path, logger)
}
