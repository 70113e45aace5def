// Package observability provides Prometheus metrics for the
// question-answering pipeline: turn counts, routing decisions, fallbacks,
// and failures.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors.
//
// A nil *Metrics is safe to use; every method becomes a no-op, so
// callers can thread metrics through optionally.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal       *prometheus.CounterVec
	routedComplex    prometheus.Counter
	routingFallbacks prometheus.Counter
	turnErrors       prometheus.Counter
	turnDuration     prometheus.Histogram
}

// NewMetrics creates and registers the pipeline collectors on a fresh
// registry.
//
// Example:
//
//	metrics := observability.NewMetrics()
//	http.Handle("/metrics", metrics.Handler())
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragbase_chat_turns_total",
			Help: "Chat turns processed, labeled by model tier.",
		}, []string{"tier"}),
		routedComplex: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragbase_routed_complex_total",
			Help: "Turns routed to the complex reasoning model.",
		}),
		routingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragbase_routing_fallbacks_total",
			Help: "Turns that fell back to the current model after a routing failure.",
		}),
		turnErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragbase_turn_errors_total",
			Help: "Turns that ended with an error event.",
		}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ragbase_turn_duration_seconds",
			Help:    "Wall-clock duration of a full chat turn.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	registry.MustRegister(m.turnsTotal, m.routedComplex, m.routingFallbacks,
		m.turnErrors, m.turnDuration)
	return m
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn records a completed turn for a model tier.
func (m *Metrics) ObserveTurn(tier string, duration time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(tier).Inc()
	m.turnDuration.Observe(duration.Seconds())
}

// ObserveComplexRoute records a turn routed to the reasoning model.
func (m *Metrics) ObserveComplexRoute() {
	if m == nil {
		return
	}
	m.routedComplex.Inc()
}

// ObserveRoutingFallback records a routing failure that kept the current
// model.
func (m *Metrics) ObserveRoutingFallback() {
	if m == nil {
		return
	}
	m.routingFallbacks.Inc()
}

// ObserveTurnError records a turn that ended with an error event.
func (m *Metrics) ObserveTurnError() {
	if m == nil {
		return
	}
	m.turnErrors.Inc()
}
