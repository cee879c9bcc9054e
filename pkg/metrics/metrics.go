// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ComparisonsTotal     *prometheus.CounterVec
	ComparisonDuration   *prometheus.HistogramVec
	ComparisonScore      *prometheus.HistogramVec
	ComparisonListLength prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	SnapshotLoadsTotal   *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ComparisonsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparisons_total",
				Help: "Total ranking comparisons by measure and status (ok, invalid, error).",
			},
			[]string{"measure", "status"},
		),
		ComparisonDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "comparison_duration_seconds",
				Help:    "Ranking comparison latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"measure"},
		),
		ComparisonScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "comparison_score",
				Help:    "Distribution of computed similarity scores.",
				Buckets: []float64{-1, -0.5, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			},
			[]string{"measure"},
		),
		ComparisonListLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "comparison_list_length",
				Help:    "Length of submitted ranked lists.",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of score cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of score cache misses.",
			},
		),
		SnapshotLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_loads_total",
				Help: "Total ranking snapshot loads by status (ok, not_found, error).",
			},
			[]string{"status"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Total comparison events published by status (ok, dropped, error).",
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ComparisonsTotal,
		m.ComparisonDuration,
		m.ComparisonScore,
		m.ComparisonListLength,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SnapshotLoadsTotal,
		m.EventsPublishedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
