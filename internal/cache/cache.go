package cache

// EvictCallback is called when an entry is evicted from the cache.
// Not all providers support eviction callbacks (e.g., Redis relies on server-side eviction).
type EvictCallback func(key string, value []byte)

// Logger receives error reports from cache operations that have no error
// return of their own (background writes, best-effort cleanup).
type Logger interface {
	Error(msg string, err error)
}

// Cache defines the provider-side interface for key-value caching.
// Implementations may use in-memory storage or external backends like Redis/Valkey.
// Eviction and expiry policy belong entirely to the implementation; callers
// only see the key/value surface.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key. If the key already exists, it is overwritten.
	Set(key string, value []byte)

	// Contains checks whether a key exists in the cache without affecting LRU ordering.
	Contains(key string) bool

	// Remove deletes a key and reports whether it was present.
	Remove(key string) bool

	// Keys returns all live keys. Ordering is provider-defined: the memory
	// provider lists oldest first, Redis makes no promise.
	Keys() []string

	// Purge removes every entry. Whether eviction callbacks fire for purged
	// entries is provider-defined.
	Purge() error

	// Len returns the number of entries currently in the cache.
	// For external backends like Redis, this may reflect the total key count in the configured database.
	Len() int

	// Close releases any resources held by the cache (e.g., network connections).
	// For in-memory caches, this is a no-op.
	Close() error
}
