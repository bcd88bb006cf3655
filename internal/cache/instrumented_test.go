package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getCounterVecValue reads the current value of a CounterVec for the given label.
func getCounterVecValue(cv *prometheus.CounterVec, label string) float64 {
	c, err := cv.GetMetricWithLabelValues(label)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// newInstrumentedTestCache creates an instrumented memory cache with the given group and
// registers a cleanup that calls Close() at the end of the test.
func newInstrumentedTestCache(t *testing.T, group string) Cache {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: group})
	if err != nil {
		t.Fatalf("New instrumented cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInstrumentedCache_Hits(t *testing.T) {
	c := newInstrumentedTestCache(t, "test-hits")

	c.Set("k", []byte("v"))
	before := getCounterVecValue(HitsTotal, "test-hits")

	_, _ = c.Get("k") // hit

	after := getCounterVecValue(HitsTotal, "test-hits")
	if after != before+1 {
		t.Errorf("Expected hits to increment by 1, got diff %.0f", after-before)
	}
}

func TestInstrumentedCache_Misses(t *testing.T) {
	c := newInstrumentedTestCache(t, "test-misses")

	before := getCounterVecValue(MissesTotal, "test-misses")

	_, _ = c.Get("absent") // miss

	after := getCounterVecValue(MissesTotal, "test-misses")
	if after != before+1 {
		t.Errorf("Expected misses to increment by 1, got diff %.0f", after-before)
	}
}

func TestInstrumentedCache_Evictions(t *testing.T) {
	evicted := make([]string, 0)
	onEvict := func(key string, _ []byte) {
		evicted = append(evicted, key)
	}

	// Size=2 so the third Set triggers an eviction.
	c, err := New("memory", ProviderConfig{Size: 2, TTL: time.Hour, Group: "test-evict", OnEvict: onEvict})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	before := getCounterVecValue(EvictionsTotal, "test-evict")

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3")) // evicts "a"

	after := getCounterVecValue(EvictionsTotal, "test-evict")
	if after != before+1 {
		t.Errorf("Expected evictions to increment by 1, got diff %.0f", after-before)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected original OnEvict to still run, got %v", evicted)
	}
}

func TestInstrumentedCache_DelegatesOperations(t *testing.T) {
	c := newInstrumentedTestCache(t, "test-delegate")

	c.Set("k", []byte("v"))
	if !c.Contains("k") {
		t.Error("Expected Contains to delegate")
	}
	if got := c.Keys(); len(got) != 1 || got[0] != "k" {
		t.Errorf("Expected Keys to delegate, got %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", c.Len())
	}
	if !c.Remove("k") {
		t.Error("Expected Remove to delegate")
	}

	c.Set("p", []byte("v"))
	if err := c.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after purge, got %d", c.Len())
	}
}

func TestInstrumentedCache_EntriesCollectorLifecycle(t *testing.T) {
	// Use an isolated registry so parallel test packages can't collide.
	reg := prometheus.NewRegistry()
	oldReg := entriesReg
	entriesReg = reg
	t.Cleanup(func() { entriesReg = oldReg })

	c := newInstrumentedTestCache(t, "test-entries")
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var entries *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "cache_entries" {
			entries = mf
		}
	}
	if entries == nil {
		t.Fatal("Expected cache_entries metric to be collected")
	}
	if got := entries.GetMetric()[0].GetGauge().GetValue(); got != 2 {
		t.Errorf("Expected 2 entries at scrape time, got %.0f", got)
	}

	// Close unregisters the collector.
	_ = c.Close()
	families, err = reg.Gather()
	if err != nil {
		t.Fatalf("Gather after close: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "cache_entries" {
			t.Fatal("Expected cache_entries collector to be unregistered after Close")
		}
	}
}
