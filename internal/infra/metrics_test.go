package infra

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveFetch("direct", "challenge")
	m.ObserveFetch("direct", "challenge")
	m.ObserveImport("url", "completed", 2*time.Second)

	if got := testutil.ToFloat64(m.FetchAttempts.WithLabelValues("direct", "challenge")); got != 2 {
		t.Fatalf("fetch attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ImportJobs.WithLabelValues("url", "completed")); got != 1 {
		t.Fatalf("import jobs = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("proxy", "ok")
	m.ObserveImport("text", "failed", time.Second)
	m.ObservePageCache("hit")
}
