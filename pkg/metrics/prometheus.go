// Package metrics provides Prometheus metrics for the counseling service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the counseling service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Data loading
	sourceLoads     *prometheus.CounterVec
	recordsIngested *prometheus.CounterVec
	valuesRejected  *prometheus.CounterVec
	datasetRecords  prometheus.Gauge
	degraded        prometheus.Gauge

	// Core computations
	conversions        *prometheus.CounterVec
	counselingRuns     *prometheus.CounterVec
	counselingLatency  prometheus.Histogram
	statisticsRequests *prometheus.CounterVec
	profileSaves       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global metrics with a manager built from opts on a
// fresh registry. Call it at startup, before GetRegistry is handed out.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pecounsel",
		subsystem:        "counseling",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.sourceLoads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "source_loads_total",
			Help:      "Data source loads by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	m.recordsIngested = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_ingested_total",
			Help:      "Athletic records kept after ingestion, by region",
		},
		[]string{"region"},
	)

	m.valuesRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "values_rejected_total",
			Help:      "Raw values or rows dropped during ingestion, by reason",
		},
		[]string{"reason"},
	)

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_records",
		Help:      "Athletic records currently held across all regions",
	})

	m.degraded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "degraded",
		Help:      "1 when at least one data source failed to load",
	})

	m.conversions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "conversions_total",
			Help:      "Per-university athletic score conversions by method",
		},
		[]string{"method"},
	)

	m.counselingRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "counseling_runs_total",
			Help:      "Counseling evaluations by outcome",
		},
		[]string{"outcome"},
	)

	m.counselingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "counseling_latency_milliseconds",
		Help:      "Counseling evaluation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.statisticsRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "statistics_requests_total",
			Help:      "Event statistics requests by event and cache result",
		},
		[]string{"event", "cache"},
	)

	m.profileSaves = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "profile_saves_total",
			Help:      "Student profile saves by section",
		},
		[]string{"section"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordSourceLoad counts one data source load attempt.
func RecordSourceLoad(kind, status string) {
	globalManager.sourceLoads.WithLabelValues(kind, status).Inc()
}

// RecordRecordsIngested adds n kept records for region.
func RecordRecordsIngested(region string, n int) {
	globalManager.recordsIngested.WithLabelValues(region).Add(float64(n))
}

// RecordRejectedValues adds n dropped values for reason.
func RecordRejectedValues(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.valuesRejected.WithLabelValues(reason).Add(float64(n))
}

// UpdateDatasetRecords sets the number of records held.
func UpdateDatasetRecords(n int) {
	globalManager.datasetRecords.Set(float64(n))
}

// UpdateDegraded flags partial source availability.
func UpdateDegraded(degraded bool) {
	v := 0.0
	if degraded {
		v = 1
	}
	globalManager.degraded.Set(v)
}

// RecordConversion counts a per-university conversion.
func RecordConversion(method string) {
	globalManager.conversions.WithLabelValues(method).Inc()
}

// RecordCounselingRun counts an evaluation by outcome.
func RecordCounselingRun(outcome string) {
	globalManager.counselingRuns.WithLabelValues(outcome).Inc()
}

// RecordCounselingLatency records evaluation latency in milliseconds.
func RecordCounselingLatency(latencyMs float64) {
	globalManager.counselingLatency.Observe(latencyMs)
}

// RecordStatisticsRequest counts a statistics lookup; cache is "hit" or "miss".
func RecordStatisticsRequest(event, cache string) {
	globalManager.statisticsRequests.WithLabelValues(event, cache).Inc()
}

// RecordProfileSave counts a profile save.
func RecordProfileSave(section string) {
	globalManager.profileSaves.WithLabelValues(section).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
