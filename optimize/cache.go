// File: optimize/cache.go

package optimize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/optillm/optillm/config"
)

// cacheEntry is owned exclusively by the cache; it is replaced wholesale on
// overwrite and never mutated after insertion.
type cacheEntry struct {
	result     Result
	insertedAt time.Time
	ttl        time.Duration
}

// resultCache stores generated results keyed by request hash. Eviction is
// oldest-first by insertion time, deliberately weaker than LRU: callers and
// tests depend on insertion-order eviction, so do not upgrade it.
type resultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	strategy   config.CacheStrategy
	baseTTL    time.Duration
	maxEntries int
	now        func() time.Time
}

func newResultCache(strategy config.CacheStrategy, ttl time.Duration, maxEntries int, now func() time.Time) *resultCache {
	return &resultCache{
		entries:    make(map[string]cacheEntry),
		strategy:   strategy,
		baseTTL:    ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// cacheKey hashes the pre-shaping prompt and the input context. Go's JSON
// encoder writes map keys in sorted order, so the serialization is canonical
// and identical logical requests share a key regardless of tier.
func cacheKey(prompt string, params map[string]any) string {
	serialized, err := json.Marshal(params)
	if err != nil {
		serialized = []byte(fmt.Sprintf("%v", params))
	}
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write(serialized)
	return hex.EncodeToString(h.Sum(nil))
}

// get returns a live entry. Expired entries are reported as misses but left
// in place; the optimize pass removes them.
func (c *resultCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.insertedAt) >= entry.ttl {
		return Result{}, false
	}
	return entry.result, true
}

// set stores a result, evicting the oldest entry first when at capacity.
// A no-op when the strategy is CacheNone.
func (c *resultCache) set(key string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.strategy == config.CacheNone {
		return
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	ttl := c.baseTTL
	if c.strategy == config.CacheAggressive {
		ttl *= 2
	}
	c.entries[key] = cacheEntry{
		result:     result,
		insertedAt: c.now(),
		ttl:        ttl,
	}
}

func (c *resultCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// optimize drops entries older than the base TTL, then continues oldest-first
// eviction until the cache is at most 80% full. Callers schedule it; the
// cache never runs it on its own.
func (c *resultCache) optimize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.baseTTL {
			delete(c.entries, key)
			removed++
		}
	}

	target := int(float64(c.maxEntries) * cacheOptimizeTarget)
	for len(c.entries) > target {
		c.evictOldestLocked()
		removed++
	}
	return removed
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// reconfigure applies new cache settings without dropping entries. An
// over-capacity cache shrinks on subsequent sets, not here.
func (c *resultCache) reconfigure(strategy config.CacheStrategy, ttl time.Duration, maxEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
	c.baseTTL = ttl
	c.maxEntries = maxEntries
}

func (c *resultCache) stats(hitRate float64) CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	utilization := 0.0
	if c.maxEntries > 0 {
		utilization = float64(len(c.entries)) / float64(c.maxEntries)
	}
	return CacheStats{
		Size:        len(c.entries),
		MaxSize:     c.maxEntries,
		Utilization: utilization,
		HitRate:     hitRate,
		Strategy:    c.strategy.String(),
	}
}
