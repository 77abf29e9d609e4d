package board

import (
	"context"
	"sync"

	"github.com/linesmerrill/school-board-api/models"
)

// Cache holds the last board snapshot that was read from or written to the backend.
// Freshness is decided by the Store, so a cache never expires entries on its own.
type Cache interface {
	Get(ctx context.Context) (models.CacheEntry, bool)
	Set(ctx context.Context, entry models.CacheEntry)
}

// MemoryCache is the per-process cache used when no shared cache is configured
type MemoryCache struct {
	mu    sync.RWMutex
	entry *models.CacheEntry
}

// NewMemoryCache returns an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get returns a copy of the cached entry
func (c *MemoryCache) Get(_ context.Context) (models.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return models.CacheEntry{}, false
	}
	return models.CacheEntry{Data: c.entry.Data.Clone(), StoredAt: c.entry.StoredAt}, true
}

// Set replaces the cached entry
func (c *MemoryCache) Set(_ context.Context, entry models.CacheEntry) {
	entry.Data = entry.Data.Clone()
	c.mu.Lock()
	c.entry = &entry
	c.mu.Unlock()
}
