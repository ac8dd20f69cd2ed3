package graphmail

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_GetMissing(t *testing.T) {
	cache := NewMemoryCache()

	if value, ok := cache.Get("absent"); ok {
		t.Errorf("Get(absent) = %q, true; want miss", value)
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("key", "value", time.Minute)

	value, ok := cache.Get("key")
	if !ok || value != "value" {
		t.Errorf("Get(key) = %q, %v; want \"value\", true", value, ok)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	cache.Set("key", "value", 45*time.Second)

	// Just inside the TTL.
	now = now.Add(44 * time.Second)
	if _, ok := cache.Get("key"); !ok {
		t.Error("entry expired before its TTL elapsed")
	}

	// Just past the TTL.
	now = now.Add(2 * time.Second)
	if value, ok := cache.Get("key"); ok {
		t.Errorf("Get after TTL = %q, true; want miss", value)
	}
}

func TestMemoryCache_SetReplaces(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("key", "old", time.Minute)
	cache.Set("key", "new", time.Minute)

	if value, _ := cache.Get("key"); value != "new" {
		t.Errorf("Get(key) = %q, want \"new\"", value)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%4)
			cache.Set(key, "value", time.Minute)
			cache.Get(key)
		}(i)
	}
	wg.Wait()
}
