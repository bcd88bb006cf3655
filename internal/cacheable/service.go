package cacheable

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborcms/portalcache/internal/cache"
)

// Service gates access to one named, provider-owned cache. It never computes
// values itself: callers look a key up, compute on miss, and store the result
// back. The underlying provider cache is created lazily on first enable and
// dropped on disable, so the handle is either open (enabled) or absent
// (disabled) — every operation that needs a live handle degrades to a no-op
// or a zero value when it is absent.
//
// The enabled flag and the handle are guarded by an RWMutex: single-call entry
// operations take the read lock and rely on the provider's own concurrency
// guarantees; Enable, Reset, and the compound operations (PutIfAbsent,
// GetAndRemove) take the write lock.
type Service struct {
	name     string
	provider string
	cfg      cache.ProviderConfig
	registry *Registry
	logger   zerolog.Logger

	mu      sync.RWMutex
	enabled bool
	store   cache.Cache // nil when disabled
}

// Infos describes a cache for administrative display: the configuration
// descriptor plus the live entry count.
type Infos struct {
	Name     string        `json:"name"`
	Provider string        `json:"provider"`
	Enabled  bool          `json:"enabled"`
	Entries  int           `json:"entries"`
	MaxSize  int           `json:"max_size"`
	TTL      time.Duration `json:"ttl"`
}

func (i Infos) String() string {
	return fmt.Sprintf("%s [%s] enabled=%t entries=%d max_size=%d ttl=%s",
		i.Name, i.Provider, i.Enabled, i.Entries, i.MaxSize, i.TTL)
}

// NewService registers a named cache with the registry and, when the
// persisted status says the cache should be on, eagerly enables it. A
// creation failure (e.g., Redis unreachable) leaves the service registered
// but disabled and is returned to the caller.
func NewService(name, provider string, cfg cache.ProviderConfig, registry *Registry, logger zerolog.Logger) (*Service, error) {
	if cfg.KeyPrefix == "" {
		// Named caches sharing one Redis database get disjoint key spaces.
		cfg.KeyPrefix = "portal:" + name
	}
	logger = logger.With().Str("cache", name).Logger()
	if cfg.Logger == nil {
		cfg.Logger = &errorLogger{logger: logger}
	}

	s := &Service{
		name:     name,
		provider: provider,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
	registry.Register(s)

	if registry.EnabledAtStartup(name) {
		// The startup enable must not write through to the status store:
		// a transiently unreachable backend would otherwise overwrite the
		// admin's persisted enabled=true, and no restart would ever retry.
		// Only explicit toggles persist.
		if err := s.transition(true); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Name returns the cache name the service was registered under.
func (s *Service) Name() string {
	return s.name
}

// Enabled reports whether the cache is currently enabled.
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Get retrieves a value by key. A disabled cache is absent for every key.
func (s *Service) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, false
	}
	return s.store.Get(key)
}

// Put stores a value. It is a no-op while the cache is disabled.
func (s *Service) Put(key string, value []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return
	}
	s.store.Set(key, value)
}

// PutIfAbsent stores a value only when the key is not already present and
// reports whether it wrote. It never writes while the cache is disabled.
// The check and the write run under the write lock, so concurrent callers in
// this process see at most one success per key; processes sharing an external
// backend can still race each other.
func (s *Service) PutIfAbsent(key string, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil || s.store.Contains(key) {
		return false
	}
	s.store.Set(key, value)
	return true
}

// Contains reports whether the key is present. Always false when disabled.
func (s *Service) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.store.Contains(key)
}

// Remove deletes a key and reports whether it was present.
func (s *Service) Remove(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.store.Remove(key)
}

// GetAndRemove retrieves a value and deletes it in one call. The read and the
// delete run under the write lock, so only one concurrent caller in this
// process receives the value; processes sharing an external backend can still
// race each other.
func (s *Service) GetAndRemove(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, false
	}
	val, ok := s.store.Get(key)
	if !ok {
		return nil, false
	}
	s.store.Remove(key)
	return val, true
}

// Clear removes every entry. It is a silent no-op when the handle is absent;
// with an open handle, provider failures are returned unchanged.
func (s *Service) Clear() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil
	}
	return s.store.Purge()
}

// Reset removes every entry best-effort: provider failures are logged and
// swallowed. It never fails, enabled or not.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return
	}
	if err := s.store.Purge(); err != nil {
		s.logger.Error().Err(err).Msg("Cache reset failed")
	}
}

// Size returns the number of live entries, 0 when the cache is disabled.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return 0
	}
	return s.store.Len()
}

// Keys returns all live keys, empty when the cache is disabled.
func (s *Service) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil
	}
	return s.store.Keys()
}

// Enable transitions the enabled state and persists it through the registry.
// Disabling clears, closes, and drops the provider handle. Enabling from the
// disabled state recreates the handle from the stored configuration; on
// creation failure the service stays disabled and the error is returned.
func (s *Service) Enable(flag bool) error {
	err := s.transition(flag)
	s.registry.UpdateStatus(s)
	return err
}

func (s *Service) transition(flag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !flag {
		s.enabled = false
		if s.store != nil {
			if err := s.store.Purge(); err != nil {
				s.logger.Error().Err(err).Msg("Purge on disable failed")
			}
			if err := s.store.Close(); err != nil {
				s.logger.Error().Err(err).Msg("Close on disable failed")
			}
			s.store = nil
		}
		return nil
	}

	if s.store == nil {
		store, err := cache.New(s.provider, s.cfg)
		if err != nil {
			s.enabled = false
			return fmt.Errorf("enable cache %q: %w", s.name, err)
		}
		s.store = store
	}
	s.enabled = true
	return nil
}

// Infos renders the configuration descriptor and live entry count.
func (s *Service) Infos() Infos {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := 0
	if s.store != nil {
		entries = s.store.Len()
	}
	return Infos{
		Name:     s.name,
		Provider: s.provider,
		Enabled:  s.enabled,
		Entries:  entries,
		MaxSize:  s.cfg.Size,
		TTL:      s.cfg.TTL,
	}
}

// Close releases the provider handle without touching the persisted status.
// Used at process teardown.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	s.enabled = false
	return err
}

// errorLogger bridges the provider layer's error reporting onto zerolog.
type errorLogger struct {
	logger zerolog.Logger
}

func (l *errorLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}
