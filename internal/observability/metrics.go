// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pass metrics
	PassesTotal    *prometheus.CounterVec // label: result (ok|fatal)
	PassDuration   prometheus.Histogram
	LastPassUnix   prometheus.Gauge
	SignalsPending prometheus.Gauge

	// Per-signal metrics
	SignalsEvaluated prometheus.Counter
	SignalsClosed    *prometheus.CounterVec // label: state
	SignalsSkipped   *prometheus.CounterVec // label: reason

	// Provider metrics
	HistoryFetches      prometheus.Counter
	HistoryFetchErrors  prometheus.Counter
	HistoryFetchLatency prometheus.Histogram
	CatalogSize         prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "signal_impact_lab"
	}

	return &Metrics{
		PassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "passes_total",
			Help:      "Total number of evaluation passes",
		}, []string{"result"}),
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "pass_duration_seconds",
			Help:      "Duration of evaluation passes",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		LastPassUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix timestamp of the last completed pass",
		}),
		SignalsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "signals_pending",
			Help:      "Eligible signals selected in the last pass",
		}),
		SignalsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "signals_evaluated_total",
			Help:      "Total number of signals evaluated",
		}),
		SignalsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "signals_closed_total",
			Help:      "Total number of signals closed, by terminal state",
		}, []string{"state"}),
		SignalsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "signals_skipped_total",
			Help:      "Total number of signals skipped, by reason",
		}, []string{"reason"}),
		HistoryFetches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "history_fetches_total",
			Help:      "Total number of OHLC window fetches",
		}),
		HistoryFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "history_fetch_errors_total",
			Help:      "Total number of failed OHLC window fetches",
		}),
		HistoryFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "history_fetch_duration_seconds",
			Help:      "Latency of OHLC window fetches",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		CatalogSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "symbols",
			Name:      "catalog_size",
			Help:      "Entries in the loaded provider catalog",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
