// Package metrics exposes prometheus counters for sync activity on a
// dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	SyncRuns   *prometheus.CounterVec
	ItemErrors prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotesync_sync_runs_total",
			Help: "Sync and aggregation runs by outcome.",
		}, []string{"operation", "status"}),
		ItemErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotesync_item_errors_total",
			Help: "Item-level failures collected across runs.",
		}),
	}
	m.registry.MustRegister(m.SyncRuns, m.ItemErrors)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
