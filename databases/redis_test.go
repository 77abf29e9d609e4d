package databases_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	cache, err := databases.NewRedisCache(ctx, addr)
	require.NoError(t, err)
	defer cache.Close()

	entry := models.CacheEntry{Data: models.DefaultBoard(), StoredAt: time.Now().UTC().Truncate(time.Millisecond)}
	cache.Set(ctx, entry)

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, entry.Data, got.Data)
	assert.True(t, entry.StoredAt.Equal(got.StoredAt))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := databases.NewRedisCache(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
