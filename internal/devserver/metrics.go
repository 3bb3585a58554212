package devserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the dev server. Each server
// carries its own registry so repeated construction stays safe.
type Metrics struct {
	registry *prometheus.Registry

	requests         prometheus.Counter
	fallbackRewrites prometheus.Counter
	rebuilds         prometheus.Counter
	rebuildFailures  prometheus.Counter
	lastBuildSeconds prometheus.Gauge
}

// NewMetrics creates and registers all metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounter(prometheus.CounterOpts{
			Name: "wb_dev_requests_total",
			Help: "Total requests served by the dev server",
		}),
		fallbackRewrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "wb_dev_fallback_rewrites_total",
			Help: "Total unmatched paths rewritten to the fallback document",
		}),
		rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "wb_rebuilds_total",
			Help: "Total successful rebuilds triggered by file changes",
		}),
		rebuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wb_rebuild_failures_total",
			Help: "Total rebuilds that failed",
		}),
		lastBuildSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wb_last_build_seconds",
			Help: "Duration of the last successful build",
		}),
	}
}

// HTTPHandler serves this server's registry.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
