package optimize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optillm/optillm/config"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func textResult(content string) Result {
	return Result{Content: content, Format: FormatText, Processed: true}
}

func TestCacheGetSet(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Minute, 10, clock.Now)

	_, ok := cache.get("k")
	assert.False(t, ok)

	cache.set("k", textResult("v"))
	got, ok := cache.get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Content)
}

func TestCacheTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Minute, 10, clock.Now)

	cache.set("k", textResult("v"))

	clock.Advance(59 * time.Second)
	_, ok := cache.get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.get("k")
	assert.False(t, ok, "entry must miss at exactly insertedAt+TTL")

	// Lazy expiry: the dead entry stays until optimize runs.
	assert.Equal(t, 1, cache.size())
}

func TestCacheAggressiveDoublesTTL(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheAggressive, time.Minute, 10, clock.Now)

	cache.set("k", textResult("v"))
	clock.Advance(90 * time.Second)

	_, ok := cache.get("k")
	assert.True(t, ok, "aggressive strategy should keep the entry for 2x TTL")

	clock.Advance(31 * time.Second)
	_, ok = cache.get("k")
	assert.False(t, ok)
}

func TestCacheNoneIsNoop(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheNone, time.Minute, 10, clock.Now)

	cache.set("k", textResult("v"))
	_, ok := cache.get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.size())
}

func TestCacheEvictionBound(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Hour, 3, clock.Now)

	for i := 0; i < 10; i++ {
		cache.set(fmt.Sprintf("k%d", i), textResult("v"))
		clock.Advance(time.Second)
		assert.LessOrEqual(t, cache.size(), 3)
	}
}

func TestCacheOldestFirstEviction(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Hour, 1, clock.Now)

	cache.set("a", textResult("va"))
	clock.Advance(time.Second)
	cache.set("b", textResult("vb"))

	_, ok := cache.get("a")
	assert.False(t, ok, "oldest entry must be evicted")
	got, ok := cache.get("b")
	require.True(t, ok)
	assert.Equal(t, "vb", got.Content)
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Hour, 2, clock.Now)

	cache.set("a", textResult("v1"))
	clock.Advance(time.Second)
	cache.set("b", textResult("vb"))
	clock.Advance(time.Second)
	cache.set("a", textResult("v2"))

	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, "v2", got.Content)
	_, ok = cache.get("b")
	assert.True(t, ok)
}

func TestCacheOptimize(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Minute, 10, clock.Now)

	for i := 0; i < 5; i++ {
		cache.set(fmt.Sprintf("old%d", i), textResult("v"))
	}
	clock.Advance(2 * time.Minute)
	for i := 0; i < 10; i++ {
		cache.set(fmt.Sprintf("new%d", i), textResult("v"))
		clock.Advance(time.Second)
	}

	removed := cache.optimize()
	assert.Greater(t, removed, 0)
	assert.LessOrEqual(t, cache.size(), 8, "optimize must shrink to 80% of capacity")

	_, ok := cache.get("old0")
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Minute, 10, clock.Now)

	cache.set("a", textResult("v"))
	cache.set("b", textResult("v"))
	cache.clear()

	assert.Equal(t, 0, cache.size())
	_, ok := cache.get("a")
	assert.False(t, ok)
}

func TestCacheKeyDerivation(t *testing.T) {
	t.Run("stable across calls", func(t *testing.T) {
		params := map[string]any{"temperature": 0.7, "taskType": "analysis"}
		assert.Equal(t, cacheKey("p", params), cacheKey("p", params))
	})

	t.Run("distinct prompts distinct keys", func(t *testing.T) {
		assert.NotEqual(t, cacheKey("p1", nil), cacheKey("p2", nil))
	})

	t.Run("distinct contexts distinct keys", func(t *testing.T) {
		assert.NotEqual(t,
			cacheKey("p", map[string]any{"temperature": 0.7}),
			cacheKey("p", map[string]any{"temperature": 0.2}))
	})

	t.Run("key order does not matter", func(t *testing.T) {
		a := map[string]any{"x": 1, "y": 2, "z": 3}
		b := map[string]any{"z": 3, "y": 2, "x": 1}
		assert.Equal(t, cacheKey("p", a), cacheKey("p", b))
	})
}

func TestCacheReconfigureKeepsEntries(t *testing.T) {
	clock := newFakeClock()
	cache := newResultCache(config.CacheBasic, time.Minute, 10, clock.Now)

	cache.set("a", textResult("v"))
	cache.reconfigure(config.CacheAggressive, time.Hour, 5)

	_, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, "aggressive", cache.stats(0).Strategy)
	assert.Equal(t, 5, cache.stats(0).MaxSize)
}
