package databases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/models"
)

const (
	boardCacheKey = "school-board:board"
	// redisEntryExpiry keeps stale entries readable so they can serve as a fallback
	redisEntryExpiry = 7 * 24 * time.Hour
)

// RedisCache keeps the board snapshot in Redis so several API processes share one cache
type RedisCache struct {
	rdb *redis.Client
	key string
}

// NewRedisCache connects to addr and pings it
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return &RedisCache{rdb: rdb, key: boardCacheKey}, nil
}

// Get returns the cached entry. Any Redis or decode error counts as a miss.
func (c *RedisCache) Get(ctx context.Context) (models.CacheEntry, bool) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.S().Warnw("redis cache get failed", "error", err)
		}
		return models.CacheEntry{}, false
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		zap.S().Warnw("failed to decode cached board", "error", err)
		return models.CacheEntry{}, false
	}
	return entry, true
}

// Set stores the entry
func (c *RedisCache) Set(ctx context.Context, entry models.CacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		zap.S().Warnw("failed to encode board for cache", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key, raw, redisEntryExpiry).Err(); err != nil {
		zap.S().Warnw("redis cache set failed", "error", err)
	}
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
