package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewCacheServiceFromClient(client, zap.NewNop())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestTryLockIsExclusive(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	unlock, ok, err := svc.TryLock(ctx, "52587")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, mr.Exists("tjchart:suggest:52587"))

	_, ok, err = svc.TryLock(ctx, "52587")
	require.NoError(t, err)
	require.False(t, ok, "second holder must be refused")

	other, ok, err := svc.TryLock(ctx, "68150")
	require.NoError(t, err)
	require.True(t, ok, "locks are per key")
	other()

	unlock()
	require.False(t, mr.Exists("tjchart:suggest:52587"))

	again, ok, err := svc.TryLock(ctx, "52587")
	require.NoError(t, err)
	require.True(t, ok)
	again()
}

func TestExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	staleUnlock, ok, err := svc.TryLock(ctx, "52587")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(3 * time.Minute)

	freshUnlock, ok, err := svc.TryLock(ctx, "52587")
	require.NoError(t, err)
	require.True(t, ok, "expired lock must be taken over")

	staleUnlock()
	require.True(t, mr.Exists("tjchart:suggest:52587"), "stale holder removed the new lock")

	freshUnlock()
	require.False(t, mr.Exists("tjchart:suggest:52587"))
}

func TestTryLockReportsConnectionErrors(t *testing.T) {
	svc, mr := newTestCache(t)
	mr.Close()

	_, ok, err := svc.TryLock(context.Background(), "52587")
	require.Error(t, err)
	require.False(t, ok)
}
