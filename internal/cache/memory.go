package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	raw       string
	expiresAt time.Time
}

// MemoryCache is the in-process fallback used when Redis is unreachable.
// Entries expire lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.raw, true
}

func (c *MemoryCache) Set(_ context.Context, key string, raw string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{raw: raw, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}
