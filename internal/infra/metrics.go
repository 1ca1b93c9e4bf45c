package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by the api and worker.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchAttempts  *prometheus.CounterVec
	ImportJobs     *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
	PageCache      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonchef",
			Name:      "fetch_attempts_total",
			Help:      "Content fetch attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		ImportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonchef",
			Name:      "import_jobs_total",
			Help:      "Finished import jobs by source type and status.",
		}, []string{"source_type", "status"}),
		ImportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bonchef",
			Name:      "import_duration_seconds",
			Help:      "Time spent processing an import job.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"source_type"}),
		PageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonchef",
			Name:      "page_cache_total",
			Help:      "Page cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.FetchAttempts, m.ImportJobs, m.ImportDuration, m.PageCache)
	}
	return m
}

func (m *Metrics) ObserveFetch(strategy, outcome string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveImport(sourceType, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.ImportJobs.WithLabelValues(sourceType, status).Inc()
	m.ImportDuration.WithLabelValues(sourceType).Observe(took.Seconds())
}

func (m *Metrics) ObservePageCache(result string) {
	if m == nil {
		return
	}
	m.PageCache.WithLabelValues(result).Inc()
}
