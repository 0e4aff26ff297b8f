package response

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache wraps go-cache with a fixed capacity. go-cache handles TTL and
// lazy expiry; the insertion-order list here provides oldest-first eviction,
// which go-cache does not track.
type MemoryCache struct {
	store    *gocache.Cache
	mu       sync.Mutex
	order    []string
	capacity int
}

func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		store:    gocache.New(ttl, ttl),
		capacity: capacity,
	}
}

func (c *MemoryCache) Get(_ context.Context, query string) (*Cached, bool) {
	value, found := c.store.Get(NormalizeKey(query))
	if !found {
		return nil, false
	}
	cached, ok := value.(*Cached)
	return cached, ok
}

func (c *MemoryCache) Set(_ context.Context, query string, value *Cached) {
	key := NormalizeKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The key may already be tracked even when go-cache reports it absent
	// (lazy expiry). Drop any prior occurrence so each key appears once.
	for i, existing := range c.order {
		if existing == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.store.Delete(oldest)
	}
	c.order = append(c.order, key)
	c.store.SetDefault(key, value)
}
