package cacheable

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harborcms/portalcache/internal/apperrors"
)

// StatusStore persists per-cache enabled flags across restarts. The registry
// consults it when an adapter is created and writes through it on every
// toggle. Implementations live outside this package (see internal/status).
type StatusStore interface {
	// Enabled returns the persisted flag for a cache name and whether any
	// flag has been persisted for it at all.
	Enabled(name string) (enabled bool, found bool)

	// SetEnabled persists the flag for a cache name.
	SetEnabled(name string, enabled bool) error
}

// Registry is the process-wide name→service mapping consulted by the
// administrative surface. Services register themselves at creation time and
// are never removed; the mapping lives for the process lifetime.
type Registry struct {
	store  StatusStore
	logger zerolog.Logger

	mu       sync.RWMutex
	services map[string]*Service
}

// NewRegistry creates a registry backed by the given status store. A nil
// store is allowed: statuses are then neither read nor persisted and every
// cache starts disabled.
func NewRegistry(store StatusStore, logger zerolog.Logger) *Registry {
	return &Registry{
		store:    store,
		logger:   logger,
		services: make(map[string]*Service),
	}
}

// Register associates a service with its name. Registering the same name
// again replaces the previous entry silently; services re-register whenever
// their underlying cache is recreated.
func (r *Registry) Register(svc *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.Name()] = svc
}

// Get returns the service registered under name, or apperrors.ErrNotFound.
func (r *Registry) Get(name string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	if !ok {
		return nil, apperrors.NewNotFoundError("cache", name)
	}
	return svc, nil
}

// Services returns every registered service, sorted by name for stable
// administrative display.
func (r *Registry) Services() []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0, len(r.services))
	for _, svc := range r.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// UpdateStatus persists the service's current enabled flag. Store failures
// are logged, not propagated: a toggle must not fail because the status file
// is momentarily unwritable.
func (r *Registry) UpdateStatus(svc *Service) {
	if r.store == nil {
		return
	}
	if err := r.store.SetEnabled(svc.Name(), svc.Enabled()); err != nil {
		r.logger.Error().Err(err).Str("cache", svc.Name()).Msg("Failed to persist cache status")
	}
}

// EnabledAtStartup reports whether the persisted configuration says the named
// cache should be enabled. Unknown names default to disabled.
func (r *Registry) EnabledAtStartup(name string) bool {
	if r.store == nil {
		return false
	}
	enabled, found := r.store.Enabled(name)
	return found && enabled
}

// ResetAll resets every registered cache best-effort.
func (r *Registry) ResetAll() {
	for _, svc := range r.Services() {
		svc.Reset()
	}
}

// CloseAll releases every provider handle at process teardown.
func (r *Registry) CloseAll() {
	for _, svc := range r.Services() {
		if err := svc.Close(); err != nil {
			r.logger.Error().Err(err).Str("cache", svc.Name()).Msg("Failed to close cache")
		}
	}
}
