package graphmail

import (
	"sync"
	"time"
)

// TokenCache stores short-lived string values by key. Implementations must
// be safe for concurrent use; the token provider shares one cache across
// all sends.
type TokenCache interface {
	// Get returns the cached value for key, or false if the key is absent
	// or its TTL has elapsed.
	Get(key string) (string, bool)
	// Set stores value under key for the given TTL, replacing any
	// previous entry.
	Set(key, value string, ttl time.Duration)
}

// MemoryCache is a mutex-guarded in-process TokenCache. Expired entries are
// dropped lazily on the next Get.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time // swappable for tests
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}
