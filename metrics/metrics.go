// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SnapshotsTotal       *prometheus.CounterVec
	SnapshotDuration     prometheus.Histogram
	TrackedEventsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SnapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_snapshots_total",
				Help: "Analytics snapshots served, by source (live, unconfigured, fallback).",
			},
			[]string{"source"},
		),
		SnapshotDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analytics_snapshot_duration_seconds",
				Help:    "Time to build an analytics snapshot, including upstream calls.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		TrackedEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracked_events_total",
				Help: "Tracking events received, by event name.",
			},
			[]string{"event"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SnapshotsTotal,
		m.SnapshotDuration,
		m.TrackedEventsTotal,
	)
	return m
}

// ObserveSnapshot implements analytics.Recorder.
func (m *Metrics) ObserveSnapshot(source string, elapsed time.Duration) {
	m.SnapshotsTotal.WithLabelValues(source).Inc()
	m.SnapshotDuration.Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
