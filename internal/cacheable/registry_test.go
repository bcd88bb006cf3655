package cacheable

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborcms/portalcache/internal/apperrors"
	"github.com/harborcms/portalcache/internal/cache"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeStatusStore) {
	t.Helper()
	store := newFakeStatusStore()
	return NewRegistry(store, zerolog.Nop()), store
}

func addService(t *testing.T, registry *Registry, name string) *Service {
	t.Helper()
	svc, err := NewService(name, "memory", cache.ProviderConfig{Size: 10, TTL: time.Hour}, registry, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService %s: %v", name, err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRegistry_GetUnknownName(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Get("missing")
	if err == nil {
		t.Fatal("Expected error for unknown cache name")
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry, _ := newTestRegistry(t)
	svc := addService(t, registry, "page")

	got, err := registry.Get("page")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != svc {
		t.Fatal("Expected Get to return the registered service")
	}
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	registry, _ := newTestRegistry(t)
	svc := addService(t, registry, "page")

	// Re-registering the same service must replace silently, not panic.
	registry.Register(svc)
	registry.Register(svc)

	if got := registry.Services(); len(got) != 1 {
		t.Fatalf("Expected 1 registered service, got %d", len(got))
	}
}

func TestRegistry_ServicesSortedByName(t *testing.T) {
	registry, _ := newTestRegistry(t)
	addService(t, registry, "portlet")
	addService(t, registry, "page")
	addService(t, registry, "site-properties")

	services := registry.Services()
	if len(services) != 3 {
		t.Fatalf("Expected 3 services, got %d", len(services))
	}
	want := []string{"page", "portlet", "site-properties"}
	for i, svc := range services {
		if svc.Name() != want[i] {
			t.Fatalf("Expected order %v, got %s at %d", want, svc.Name(), i)
		}
	}
}

func TestRegistry_ResetAll(t *testing.T) {
	registry, _ := newTestRegistry(t)
	a := addService(t, registry, "a")
	b := addService(t, registry, "b")
	for _, svc := range []*Service{a, b} {
		if err := svc.Enable(true); err != nil {
			t.Fatalf("Enable: %v", err)
		}
		svc.Put("k", []byte("v"))
	}

	registry.ResetAll()

	if a.Size() != 0 || b.Size() != 0 {
		t.Fatal("Expected all caches to be empty after ResetAll")
	}
}

func TestRegistry_UpdateStatusStoreFailure(t *testing.T) {
	registry, store := newTestRegistry(t)
	svc := addService(t, registry, "page")

	store.fail = true
	// A failing status store must not break the toggle itself.
	if err := svc.Enable(true); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !svc.Enabled() {
		t.Fatal("Expected the cache to be enabled despite the store failure")
	}
}

func TestRegistry_NilStore(t *testing.T) {
	registry := NewRegistry(nil, zerolog.Nop())
	svc := addService(t, registry, "page")

	if svc.Enabled() {
		t.Fatal("Expected caches to start disabled with a nil store")
	}
	// Toggling with no store must not panic.
	if err := svc.Enable(true); err != nil {
		t.Fatalf("Enable: %v", err)
	}
}
