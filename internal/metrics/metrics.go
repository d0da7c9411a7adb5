// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service collectors. A single instance is created at
// startup and shared across systems.
type Metrics struct {
	registry *prometheus.Registry

	// Classifications counts classification runs by outcome:
	// auto_assigned, suggested, or fallback.
	Classifications *prometheus.CounterVec

	// ClassificationDuration observes classification latency.
	ClassificationDuration prometheus.Histogram

	// DedupChecks counts duplicate checks by result classification.
	DedupChecks *prometheus.CounterVec

	// LinksCreated counts newly created document link rows.
	LinksCreated prometheus.Counter

	// SweepReclaimed counts drafts reclaimed by the session sweeper.
	SweepReclaimed prometheus.Counter
}

// New creates and registers the service collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	with := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Classifications: with.NewCounterVec(prometheus.CounterOpts{
			Name: "docintake_classifications_total",
			Help: "Classification runs by outcome.",
		}, []string{"outcome"}),
		ClassificationDuration: with.NewHistogram(prometheus.HistogramOpts{
			Name:    "docintake_classification_duration_seconds",
			Help:    "Classification latency.",
			Buckets: prometheus.DefBuckets,
		}),
		DedupChecks: with.NewCounterVec(prometheus.CounterOpts{
			Name: "docintake_dedup_checks_total",
			Help: "Duplicate checks by result.",
		}, []string{"result"}),
		LinksCreated: with.NewCounter(prometheus.CounterOpts{
			Name: "docintake_links_created_total",
			Help: "Document link rows created.",
		}),
		SweepReclaimed: with.NewCounter(prometheus.CounterOpts{
			Name: "docintake_sweep_reclaimed_total",
			Help: "Draft documents reclaimed by the session sweeper.",
		}),
	}
}

// Handler returns the /metrics scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
