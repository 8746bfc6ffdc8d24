package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the back office
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Catalog provider metrics
	ProviderRequestsTotal   prometheus.CounterVec
	ProviderRequestDuration prometheus.HistogramVec

	// Geocode cache metrics
	GeocodeCacheHitsTotal   prometheus.Counter
	GeocodeCacheMissesTotal prometheus.Counter

	// Sync metrics
	SyncRunsTotal      prometheus.CounterVec
	SyncRunDuration    prometheus.HistogramVec
	ToursSyncedTotal   prometheus.CounterVec
	SyncErrorsTotal    prometheus.CounterVec
	MediaImportedTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backoffice_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Catalog provider metrics
		ProviderRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_provider_requests_total",
				Help: "Total requests to the external catalog provider by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ProviderRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_provider_request_duration_seconds",
				Help:    "Catalog provider request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),

		// Geocode cache metrics
		GeocodeCacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_geocode_cache_hits_total",
				Help: "Total geocode lookups served from cache",
			},
		),
		GeocodeCacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_geocode_cache_misses_total",
				Help: "Total geocode lookups that went to the resolver",
			},
		),

		// Sync metrics
		SyncRunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_catalog_sync_runs_total",
				Help: "Total catalog sync runs by final status",
			},
			[]string{"status"},
		),
		SyncRunDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_catalog_sync_duration_seconds",
				Help:    "Catalog sync duration in seconds per brand",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"brand"},
		),
		ToursSyncedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_tours_synced_total",
				Help: "Total tour records reconciled by brand and action",
			},
			[]string{"brand", "action"},
		),
		SyncErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_sync_errors_total",
				Help: "Total per-item sync errors by brand",
			},
			[]string{"brand"},
		),
		MediaImportedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_media_imported_total",
				Help: "Total media import attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}
