package planner

import (
	"strings"
	"sync"
	"time"
)

// CacheTTL is how long a generated plan is served from cache.
const CacheTTL = 7 * 24 * time.Hour

// Fingerprint builds the deterministic cache key for a plan request.
// The concatenation is order-sensitive: reordered but otherwise equal
// lists produce different keys and are treated as cache misses.
func Fingerprint(userID string, restrictions, preferences, cuisines []string) string {
	parts := []string{
		userID,
		strings.Join(restrictions, ","),
		strings.Join(preferences, ","),
		strings.Join(cuisines, ","),
	}
	return strings.Join(parts, "|")
}

type cacheEntry struct {
	data       PlanData
	insertedAt time.Time
}

// PlanCache memoizes generated plan data by request fingerprint.
// Entries older than the TTL are evicted lazily on lookup.
type PlanCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewPlanCache creates a PlanCache with the default TTL.
func NewPlanCache() *PlanCache {
	return &PlanCache{
		entries: make(map[string]cacheEntry),
		ttl:     CacheTTL,
		now:     time.Now,
	}
}

// Get returns the cached plan data for key, if present and fresh.
// A stale entry is removed and reported as a miss.
func (c *PlanCache) Get(key string) (*PlanData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	data := entry.data
	return &data, true
}

// Put stores plan data under key with the current timestamp.
func (c *PlanCache) Put(key string, data PlanData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, insertedAt: c.now()}
}

// Len returns the number of entries currently held, including stale ones.
func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
