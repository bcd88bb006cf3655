package cache

import (
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, size int) Cache {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: size, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	// Miss
	val, ok := c.Get("key1")
	if ok {
		t.Fatal("Expected miss for key1")
	}
	if val != nil {
		t.Fatalf("Expected nil value on miss, got %v", val)
	}

	// Set + hit
	c.Set("key1", []byte("value1"))
	val, ok = c.Get("key1")
	if !ok {
		t.Fatal("Expected hit for key1")
	}
	if string(val) != "value1" {
		t.Fatalf("Expected value1, got %s", string(val))
	}
}

func TestMemoryCache_Contains(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	if c.Contains("absent") {
		t.Fatal("Expected absent key to not be contained")
	}

	c.Set("present", []byte("data"))
	if !c.Contains("present") {
		t.Fatal("Expected present key to be contained")
	}
}

func TestMemoryCache_Remove(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	if c.Remove("absent") {
		t.Fatal("Expected Remove of absent key to report false")
	}

	c.Set("k", []byte("v"))
	if !c.Remove("k") {
		t.Fatal("Expected Remove of present key to report true")
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected removed key to be gone")
	}
}

func TestMemoryCache_Keys(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	if keys := c.Keys(); len(keys) != 0 {
		t.Fatalf("Expected no keys on fresh cache, got %v", keys)
	}

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	keys := c.Keys()
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %v", keys)
	}
	// LRU keys are ordered oldest to newest.
	if keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Expected [a b], got %v", keys)
	}
}

func TestMemoryCache_Purge(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	if err := c.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Expected empty cache after purge, got %d entries", c.Len())
	}
}

func TestMemoryCache_Len(t *testing.T) {
	c := newTestMemoryCache(t, 10)

	if c.Len() != 0 {
		t.Fatalf("Expected Len 0, got %d", c.Len())
	}

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	if c.Len() != 2 {
		t.Fatalf("Expected Len 2, got %d", c.Len())
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	evicted := make([]string, 0)
	c, err := New("memory", ProviderConfig{
		Size: 2,
		TTL:  time.Hour,
		OnEvict: func(key string, _ []byte) {
			evicted = append(evicted, key)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3")) // evicts "a"

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("Expected [a] evicted, got %v", evicted)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("Expected oldest entry to be evicted")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))
	time.Sleep(120 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected entry to expire")
	}
}
