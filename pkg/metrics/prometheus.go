// Package metrics provides Prometheus metrics for the tritime analyzer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the analyzer.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Core business metrics.
	timelinesAnalyzed prometheus.Counter
	pointsClassified  prometheus.Counter
	anomaliesDetected *prometheus.CounterVec
	classifyDuration  prometheus.Histogram

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Adapter health metrics.
	storeErrors   prometheus.Counter
	publishErrors prometheus.Counter
	batchFiles    *prometheus.CounterVec
}

// Global metrics manager instance backed by a custom registry, keeping the
// default Go collectors out of the scrape output.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "tritime",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.timelinesAnalyzed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "timelines_analyzed_total",
		Help:      "Total number of timelines classified.",
	})
	m.pointsClassified = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "points_classified_total",
		Help:      "Total number of temporal points inspected.",
	})
	m.anomaliesDetected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "anomalies_detected_total",
		Help:      "Total anomalies detected, by type and severity.",
	}, []string{"type", "severity"})
	m.classifyDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "classify_duration_ms",
		Help:      "Classification latency in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"endpoint", "method"})

	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "store_errors_total",
		Help:      "Timeline store failures.",
	})
	m.publishErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "publish_errors_total",
		Help:      "Publisher failures.",
	})
	m.batchFiles = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "batch_files_total",
		Help:      "Batch files processed, by outcome.",
	}, []string{"outcome"})

	return m
}

// Handler exposes the custom registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// RecordTimelineAnalyzed counts one classified timeline and its point count.
func RecordTimelineAnalyzed(pointCount int) {
	globalManager.timelinesAnalyzed.Inc()
	globalManager.pointsClassified.Add(float64(pointCount))
}

// RecordAnomaly counts one detected anomaly.
func RecordAnomaly(anomalyType, severity string) {
	globalManager.anomaliesDetected.WithLabelValues(anomalyType, severity).Inc()
}

// RecordClassifyDuration records classification latency in milliseconds.
func RecordClassifyDuration(ms float64) {
	globalManager.classifyDuration.Observe(ms)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// RecordStoreError counts one timeline store failure.
func RecordStoreError() { globalManager.storeErrors.Inc() }

// RecordPublishError counts one publisher failure.
func RecordPublishError() { globalManager.publishErrors.Inc() }

// RecordBatchFile counts one batch file by outcome ("ok" or "error").
func RecordBatchFile(outcome string) {
	globalManager.batchFiles.WithLabelValues(outcome).Inc()
}
