package geolocation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	current := time.Now()
	cache := newTTLCache(4, time.Hour)
	cache.now = func() time.Time { return current }

	cache.set("1.2.3.4", &Location{CountryCode: "DE"})

	loc, ok := cache.get("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, "DE", loc.CountryCode)

	// Entry expires after the TTL and is purged on read
	current = current.Add(time.Hour + time.Minute)
	_, ok = cache.get("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.len())
}

func TestTTLCacheLRUEviction(t *testing.T) {
	cache := newTTLCache(2, time.Hour)

	cache.set("a", &Location{CountryCode: "A"})
	cache.set("b", &Location{CountryCode: "B"})

	// Touch "a" so "b" becomes the eviction candidate
	_, ok := cache.get("a")
	assert.True(t, ok)

	cache.set("c", &Location{CountryCode: "C"})
	assert.Equal(t, 2, cache.len())

	_, ok = cache.get("b")
	assert.False(t, ok)
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestTTLCacheUpdateRefreshes(t *testing.T) {
	current := time.Now()
	cache := newTTLCache(4, time.Hour)
	cache.now = func() time.Time { return current }

	cache.set("k", &Location{CountryCode: "US"})

	current = current.Add(50 * time.Minute)
	cache.set("k", &Location{CountryCode: "FR"})

	// The rewrite reset the clock, so the original deadline has no effect
	current = current.Add(50 * time.Minute)
	loc, ok := cache.get("k")
	assert.True(t, ok)
	assert.Equal(t, "FR", loc.CountryCode)
}

func TestTTLCacheCapacityFallback(t *testing.T) {
	cache := newTTLCache(0, time.Hour)
	for i := 0; i < 1030; i++ {
		cache.set(fmt.Sprintf("ip-%d", i), &Location{CountryCode: "XX"})
	}
	assert.Equal(t, 1024, cache.len())
}
