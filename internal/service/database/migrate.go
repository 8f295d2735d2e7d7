package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Migrate creates every table and index the chart needs. It is idempotent and
// runs once at startup, before the first request.
func Migrate(ctx context.Context, store *Store) error {
	statements := schemaFor(store.Backend())
	for i, stmt := range statements {
		if err := store.Run(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	store.logger.Info("Schema ready",
		zap.String("backend", store.Backend().String()),
		zap.Int("statements", len(statements)),
	)
	return nil
}
