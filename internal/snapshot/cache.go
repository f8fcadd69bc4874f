// Package snapshot produces mempool snapshots for trading pairs by walking
// an ordered chain of data sources and caching the results briefly.
package snapshot

import (
	"sync"
	"time"

	"mev-sentinel/internal/domain"
)

// Cache defaults.
const (
	DefaultCacheTTL   = 3 * time.Second
	DefaultEvictAfter = 30 * time.Second
)

// CacheConfig holds freshness cache settings.
type CacheConfig struct {
	TTL        time.Duration // entry freshness window
	EvictAfter time.Duration // entries older than this are dropped on write
}

// DefaultCacheConfig returns production cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        DefaultCacheTTL,
		EvictAfter: DefaultEvictAfter,
	}
}

type cacheEntry struct {
	snapshot *domain.MempoolSnapshot
	storedAt time.Time
}

// Cache is a short-TTL store of the most recent snapshot per normalized
// pair. Snapshots are shared read-only; a hit returns the stored pointer.
type Cache struct {
	mu      sync.RWMutex
	config  CacheConfig
	entries map[string]cacheEntry
	now     func() time.Time // test hook
}

// NewCache creates a freshness cache.
func NewCache(config CacheConfig) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.EvictAfter <= 0 {
		config.EvictAfter = DefaultEvictAfter
	}
	return &Cache{
		config:  config,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a pair if it is still within the TTL.
func (c *Cache) Get(pair string) (*domain.MempoolSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.config.TTL {
		return nil, false
	}
	return entry.snapshot, true
}

// Put stores a snapshot and opportunistically evicts entries older than the
// eviction threshold to bound memory.
func (c *Cache) Put(pair string, snapshot *domain.MempoolSnapshot) {
	if snapshot == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.config.EvictAfter {
			delete(c.entries, key)
		}
	}
	c.entries[pair] = cacheEntry{snapshot: snapshot, storedAt: now}
}

// Len returns the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
