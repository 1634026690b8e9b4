// Package metrics expone los contadores Prometheus del servicio.
// Todos los métodos toleran receptor nil para que los tests no necesiten registrar nada.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petfinder"

type Metrics struct {
	registry *prometheus.Registry

	reportsSubmitted    *prometheus.CounterVec
	matchesCreated      prometheus.Counter
	matchSearchFailures prometheus.Counter
	notifications       *prometheus.CounterVec
	decisions           *prometheus.CounterVec
	extractionDurations prometheus.Histogram
}

// New crea un registry propio (no el global) con los collectors de proceso y Go.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		reportsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports persisted, by kind.",
		}, []string{"kind"}),
		matchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches created by the match finder.",
		}),
		matchSearchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_search_failures_total",
			Help:      "Match searches that failed after the report was persisted.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Match notifications attempted, by notifier and result.",
		}, []string{"notifier", "result"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_decisions_total",
			Help:      "Match decisions applied, by decision.",
		}, []string{"decision"}),
		extractionDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Latency of attribute extraction calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reportsSubmitted,
		m.matchesCreated,
		m.matchSearchFailures,
		m.notifications,
		m.decisions,
		m.extractionDurations,
	)
	return m
}

// Handler sirve /metrics para este registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ReportSubmitted(kind string) {
	if m == nil {
		return
	}
	m.reportsSubmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatchCreated() {
	if m == nil {
		return
	}
	m.matchesCreated.Inc()
}

func (m *Metrics) MatchSearchFailed() {
	if m == nil {
		return
	}
	m.matchSearchFailures.Inc()
}

func (m *Metrics) Notification(notifier string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.notifications.WithLabelValues(notifier, result).Inc()
}

func (m *Metrics) Decision(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveExtraction(seconds float64) {
	if m == nil {
		return
	}
	m.extractionDurations.Observe(seconds)
}
