package snapshot

import (
	"testing"
	"time"

	"mev-sentinel/internal/domain"
)

func snapFor(pair string, source domain.SourceLabel) *domain.MempoolSnapshot {
	return &domain.MempoolSnapshot{
		TokenIn:    pair,
		TokenOut:   "USDC",
		Source:     source,
		Confidence: domain.ConfidencePendingBlock,
		CreatedAt:  time.Now().UnixMilli(),
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	snap := snapFor("WETH", domain.SourcePendingBlock)
	cache.Put("WETH/USDC", snap)

	got, ok := cache.Get("WETH/USDC")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != snap {
		t.Error("expected the stored snapshot pointer")
	}
}

func TestCache_MissAfterTTL(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: 3 * time.Second, EvictAfter: 30 * time.Second})

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Put("WETH/USDC", snapFor("WETH", domain.SourcePendingBlock))

	cache.now = func() time.Time { return now.Add(4 * time.Second) }
	if _, ok := cache.Get("WETH/USDC"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestCache_MissUnknownPair(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())
	if _, ok := cache.Get("WETH/USDC"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestCache_EvictsOldEntriesOnWrite(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: 3 * time.Second, EvictAfter: 30 * time.Second})

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Put("WETH/USDC", snapFor("WETH", domain.SourcePendingBlock))
	cache.Put("WETH/DAI", snapFor("WETH", domain.SourcePendingBlock))

	cache.now = func() time.Time { return now.Add(31 * time.Second) }
	cache.Put("WETH/USDT", snapFor("WETH", domain.SourcePendingBlock))

	if cache.Len() != 1 {
		t.Errorf("expected stale entries evicted on write, got %d entries", cache.Len())
	}
}

func TestCache_NilSnapshotIgnored(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())
	cache.Put("WETH/USDC", nil)
	if cache.Len() != 0 {
		t.Error("nil snapshot must not be stored")
	}
}
