package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService holds the Redis connection used for short-lived coordination
// keys shared by every process that works on the same catalogue.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// releaseScript deletes the lock only when it still holds our token, so an
// expired holder cannot remove a newer one.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  constants.RedisConfig.DialTimeout,
		ReadTimeout:  constants.RedisConfig.ReadTimeout,
		WriteTimeout: constants.RedisConfig.WriteTimeout,
		PoolSize:     constants.RedisConfig.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceFromClient(client, logger), nil
}

// NewCacheServiceFromClient wraps an existing client.
func NewCacheServiceFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		client: client,
		logger: logger,
		prefix: constants.SuggestionLockConfig.KeyPrefix,
		ttl:    constants.SuggestionLockConfig.TTL,
	}
}

// TryLock takes the named lock without waiting. ok is false when another
// holder has it. The lock expires on its own after the configured TTL.
func (c *CacheService) TryLock(ctx context.Context, name string) (func(), bool, error) {
	key := c.prefix + name
	token, err := newToken()
	if err != nil {
		return nil, false, errors.NewCacheError("token generation failed", "lock", key, err)
	}

	acquired, err := c.client.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		c.logger.Error("Cache lock failed", zap.String("key", key), zap.Error(err))
		return nil, false, errors.NewCacheError("lock failed", "lock", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func() {
		// the caller's context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.WriteTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, c.client, []string{key}, token).Err(); err != nil {
			c.logger.Warn("Cache unlock failed", zap.String("key", key), zap.Error(err))
		}
	}
	return unlock, true, nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
