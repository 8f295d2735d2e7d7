// Package dbtest builds throwaway migrated stores for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kapu/tj-jpop-chart-go/internal/service/database"
	"go.uber.org/zap"
)

// NewStore opens a fresh SQLite file under t.TempDir and migrates it.
func NewStore(t testing.TB) *database.Store {
	t.Helper()

	ctx := context.Background()
	store, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "songs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := database.Migrate(ctx, store); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	return store
}
