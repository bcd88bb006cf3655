package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Portal-level metrics
var (
	// PagesRenderedTotal counts page deliveries by page name and by whether
	// the bytes came from the cache or a fresh render.
	PagesRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_pages_rendered_total",
			Help: "Total number of portal pages delivered.",
		},
		[]string{"page", "source"},
	)

	// CacheTogglesTotal counts administrative enable/disable operations.
	CacheTogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_toggles_total",
			Help: "Total number of administrative cache toggles.",
		},
		[]string{"cache", "action"},
	)

	// CacheResetsTotal counts administrative cache resets.
	CacheResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_resets_total",
			Help: "Total number of administrative cache resets.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(
		PagesRenderedTotal,
		CacheTogglesTotal,
		CacheResetsTotal,
	)
}
