package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestMetrics_PagesRenderedTotal(t *testing.T) {
	before := getCounterVecValue(PagesRenderedTotal, "home", "cache")
	PagesRenderedTotal.WithLabelValues("home", "cache").Inc()
	after := getCounterVecValue(PagesRenderedTotal, "home", "cache")
	if after != before+1 {
		t.Errorf("Expected counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_CacheTogglesTotal(t *testing.T) {
	before := getCounterVecValue(CacheTogglesTotal, "page", "enable")
	CacheTogglesTotal.WithLabelValues("page", "enable").Inc()
	after := getCounterVecValue(CacheTogglesTotal, "page", "enable")
	if after != before+1 {
		t.Errorf("Expected counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_CacheResetsTotal(t *testing.T) {
	before := getCounterVecValue(CacheResetsTotal, "page")
	CacheResetsTotal.WithLabelValues("page").Inc()
	after := getCounterVecValue(CacheResetsTotal, "page")
	if after != before+1 {
		t.Errorf("Expected counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestNewHTTPServer_DefaultPort(t *testing.T) {
	srv := NewHTTPServer("localhost", 0)
	if srv.Addr != "localhost:9090" {
		t.Errorf("Expected default port 9090, got %s", srv.Addr)
	}
}
