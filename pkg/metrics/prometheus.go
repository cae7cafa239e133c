// Package metrics provides Prometheus metrics for the staffwise recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Recommendation engine
	recommendations       *prometheus.CounterVec
	recommendLatency      prometheus.Histogram
	requirementsEvaluated prometheus.Counter
	candidatesConsidered  prometheus.Counter
	employeesRecommended  prometheus.Counter
	eligibleEmployees     prometheus.Gauge

	// Data collaborator
	fetchErrors  *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec

	// Skill normalizer cache
	normalizerHits   prometheus.Counter
	normalizerMisses prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Batch queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "staffwise",
		subsystem:        "recommender",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.recommendations = m.counterVec("recommendations_total",
		"Recommendation calls by outcome (ok, empty, fetch_error)", "outcome")
	m.recommendLatency = m.histogram("recommend_latency_milliseconds",
		"End-to-end latency of a single project recommendation")
	m.requirementsEvaluated = m.counter("requirements_evaluated_total",
		"Project requirement rows evaluated")
	m.candidatesConsidered = m.counter("candidates_considered_total",
		"Employees that passed the tier gate for a requirement")
	m.employeesRecommended = m.counter("employees_recommended_total",
		"Assignments produced across all requirements")
	m.eligibleEmployees = m.gauge("eligible_employees",
		"Eligible employees in the most recent snapshot")

	m.fetchErrors = m.counterVec("fetch_errors_total",
		"Data collaborator failures by operation", "operation")
	m.fetchLatency = m.histogramVec("fetch_latency_milliseconds",
		"Data collaborator latency by operation", "operation")

	m.normalizerHits = m.counter("normalizer_cache_hits_total", "Skill normalizer cache hits")
	m.normalizerMisses = m.counter("normalizer_cache_misses_total", "Skill normalizer cache misses")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total",
		"HTTP responses with status >= 400 by endpoint and error type", "endpoint", "error_type")

	m.queueSize = m.gauge("batch_queue_size", "Jobs waiting in the batch queue")
	m.queueCapacity = m.gauge("batch_queue_capacity", "Capacity of the batch queue")
	m.queueEnqueued = m.counter("batch_jobs_enqueued_total", "Batch jobs accepted by the queue")
	m.queueEnqueueErrors = m.counterVec("batch_enqueue_errors_total",
		"Batch jobs rejected by the queue by reason", "reason")
	m.workerCount = m.gauge("batch_workers", "Batch workers running")
	m.workerLatency = m.histogram("batch_job_latency_milliseconds", "Batch job processing latency")
	m.workerErrors = m.counter("batch_job_errors_total", "Batch jobs that failed")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// Recommendation engine.

// RecordRecommendation counts one recommendation call with its outcome.
func RecordRecommendation(outcome string) {
	globalManager.recommendations.WithLabelValues(outcome).Inc()
}

// RecordRecommendLatency records the latency of one recommendation call.
func RecordRecommendLatency(latencyMs float64) {
	globalManager.recommendLatency.Observe(latencyMs)
}

// RecordRequirementEvaluated counts one requirement row scored.
func RecordRequirementEvaluated() {
	globalManager.requirementsEvaluated.Inc()
}

// RecordCandidatesConsidered adds the number of tier-gated candidates.
func RecordCandidatesConsidered(n int) {
	globalManager.candidatesConsidered.Add(float64(n))
}

// RecordEmployeesRecommended adds the number of assignments produced.
func RecordEmployeesRecommended(n int) {
	globalManager.employeesRecommended.Add(float64(n))
}

// UpdateEligibleEmployees sets the eligible snapshot size.
func UpdateEligibleEmployees(n int) {
	globalManager.eligibleEmployees.Set(float64(n))
}

// Data collaborator.

// RecordFetchError counts a failed fetch for the given operation.
func RecordFetchError(operation string) {
	globalManager.fetchErrors.WithLabelValues(operation).Inc()
}

// RecordFetchLatency records the latency of a fetch operation.
func RecordFetchLatency(operation string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Normalizer cache.

// RecordNormalizerHit counts a cache hit.
func RecordNormalizerHit() {
	globalManager.normalizerHits.Inc()
}

// RecordNormalizerMiss counts a cache miss.
func RecordNormalizerMiss() {
	globalManager.normalizerMisses.Inc()
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// Batch queue and workers.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerLatency records batch job latency.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed batch job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
