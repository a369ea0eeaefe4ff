// Package metrics provides Prometheus metrics for the house price service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for predictions.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeClamped = "clamped"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	priceBuckets   []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Pricing
	predictions      *prometheus.CounterVec
	invalidInputs    *prometheus.CounterVec
	predictedPrice   prometheus.Histogram
	reportsGenerated prometheus.Counter
	limitViolations  *prometheus.CounterVec

	// Batch valuations
	jobsSubmitted  *prometheus.CounterVec
	jobsTracked    prometheus.Gauge
	jobsEvicted    prometheus.Counter
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDequeued  prometheus.Counter
	queueRejected  *prometheus.CounterVec
	workerCount    prometheus.Gauge
	workerLatency  prometheus.Histogram
	workerFailures prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "houseprice",
		subsystem:      "estimator",
		latencyBuckets: prometheus.DefBuckets,
		priceBuckets:   prometheus.ExponentialBuckets(50_000, 2, 12),
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Predictions by outcome (ok, clamped, invalid)"),
		[]string{"outcome"},
	)
	m.invalidInputs = auto.NewCounterVec(
		m.counterOpts("invalid_inputs_total", "Rejected attribute values by attribute and reason"),
		[]string{"attribute", "reason"},
	)
	m.predictedPrice = auto.NewHistogram(
		m.histogramOpts("predicted_price", "Distribution of predicted prices", m.priceBuckets),
	)
	m.reportsGenerated = auto.NewCounter(
		m.counterOpts("reports_generated_total", "Text reports rendered"),
	)
	m.limitViolations = auto.NewCounterVec(
		m.counterOpts("limit_violations_total", "Attributes rejected by the form ranges"),
		[]string{"attribute"},
	)

	m.jobsSubmitted = auto.NewCounterVec(
		m.counterOpts("valuation_jobs_total", "Batch valuation submissions by status"),
		[]string{"status"},
	)
	m.jobsTracked = auto.NewGauge(m.gaugeOpts("valuation_jobs", "Jobs currently held in memory"))
	m.jobsEvicted = auto.NewCounter(m.counterOpts("valuation_jobs_evicted_total", "Jobs evicted to respect max_jobs"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Tasks waiting in the valuation queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum tasks the valuation queue holds"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Tasks accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Tasks handed to workers"))
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("queue_rejected_total", "Tasks refused by the queue by reason"),
		[]string{"reason"},
	)
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Valuation workers running"))
	m.workerLatency = auto.NewHistogram(
		m.histogramOpts("worker_task_latency_milliseconds", "Time spent evaluating one task", m.latencyBuckets),
	)
	m.workerFailures = auto.NewCounter(m.counterOpts("worker_failures_total", "Tasks that could not be recorded"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// RecordPrediction counts a successful prediction and observes its price.
func RecordPrediction(price float64, clamped bool) {
	outcome := OutcomeOK
	if clamped {
		outcome = OutcomeClamped
	}
	globalManager.predictions.WithLabelValues(outcome).Inc()
	globalManager.predictedPrice.Observe(price)
}

// RecordInvalidInput counts a prediction rejected for attribute with reason.
func RecordInvalidInput(attribute, reason string) {
	globalManager.predictions.WithLabelValues(OutcomeInvalid).Inc()
	globalManager.invalidInputs.WithLabelValues(attribute, reason).Inc()
}

// RecordReport counts a rendered report.
func RecordReport() {
	globalManager.reportsGenerated.Inc()
}

// RecordLimitViolation counts an attribute outside the form ranges.
func RecordLimitViolation(attribute string) {
	globalManager.limitViolations.WithLabelValues(attribute).Inc()
}

// RecordJobSubmitted counts a batch submission with status accepted,
// duplicate or rejected.
func RecordJobSubmitted(status string) {
	globalManager.jobsSubmitted.WithLabelValues(status).Inc()
}

// UpdateJobsTracked sets the number of jobs held in memory.
func UpdateJobsTracked(count int) {
	globalManager.jobsTracked.Set(float64(count))
}

// RecordJobEvicted counts a job dropped to make room.
func RecordJobEvicted() {
	globalManager.jobsEvicted.Inc()
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue length.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted task.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a task handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a refused task.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerLatency observes the time spent on one task.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerFailure counts a task whose outcome could not be stored.
func RecordWorkerFailure() {
	globalManager.workerFailures.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

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
