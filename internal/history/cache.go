package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quantfolio/riskengine/internal/domain"
)

// CachedProvider wraps a HistoryProvider with a TTL cache. A
// singleflight.Group prevents duplicate in-flight fetches for the same
// symbol and window, so concurrent report builds hit the store once.
type CachedProvider struct {
	inner domain.HistoryProvider
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	now func() time.Time // injectable for tests
}

type cacheEntry struct {
	series    domain.PriceSeries
	fetchedAt time.Time
}

// NewCachedProvider wraps inner with a cache whose entries expire after ttl.
func NewCachedProvider(inner domain.HistoryProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetHistory returns the cached series when fresh, otherwise fetches
// from the wrapped provider and stores the result. Errors are never
// cached.
func (c *CachedProvider) GetHistory(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) (domain.PriceSeries, error) {
	key := fmt.Sprintf("%s|%s|%d", symbol, class, lookbackDays)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.series, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have refreshed the entry while we waited
		// on the flight group.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
			return entry.series, nil
		}

		series, err := c.inner.GetHistory(ctx, symbol, class, lookbackDays)
		if err != nil {
			return domain.PriceSeries{}, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{series: series, fetchedAt: c.now()}
		c.mu.Unlock()
		return series, nil
	})
	if err != nil {
		return domain.PriceSeries{}, err
	}

	return result.(domain.PriceSeries), nil
}

// Invalidate drops all cached entries.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
