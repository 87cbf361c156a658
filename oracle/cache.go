// oracle/cache.go
package oracle

import (
	"context"
	"sync"

	"github.com/dev-mohitbeniwal/tokengate/model"
)

// Cache stores balance fetch results keyed by (wallet, mint). Entries are
// kept without expiry; the oracle decides freshness so that stale entries
// remain available as the degraded-mode fallback. Implementations must be
// safe for concurrent use; a same-key double fetch resolving last-writer-
// wins is acceptable.
type Cache interface {
	Get(ctx context.Context, wallet, mint string) (*model.BalanceCacheEntry, error)
	Set(ctx context.Context, entry model.BalanceCacheEntry) error
}

// MemoryCache is the in-process Cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]model.BalanceCacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]model.BalanceCacheEntry)}
}

func cacheKey(wallet, mint string) string {
	return wallet + ":" + mint
}

func (c *MemoryCache) Get(ctx context.Context, wallet, mint string) (*model.BalanceCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(wallet, mint)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *MemoryCache) Set(ctx context.Context, entry model.BalanceCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(entry.Wallet, entry.Mint)
	// Never regress an entry to an older fetch.
	if existing, ok := c.entries[key]; ok && existing.FetchedAt.After(entry.FetchedAt) {
		return nil
	}
	c.entries[key] = entry
	return nil
}
