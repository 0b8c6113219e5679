// Package metrics provides Prometheus metrics for the jurybox scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger metrics
	ledgerUpserts      prometheus.Counter
	ledgerReads        prometheus.Counter
	ledgerRecords      prometheus.Gauge
	ledgerLockWait     prometheus.Histogram
	ledgerLockTimeouts prometheus.Counter
	ledgerErrors       prometheus.Counter

	// Normalization metrics
	rankingComputes        prometheus.Counter
	rankingComputeDuration prometheus.Histogram
	rankingRecordsIn       prometheus.Gauge

	// Submission metrics
	submissionsAccepted prometheus.Counter
	submissionsClamped  prometheus.Counter
	submissionsRejected prometheus.Counter

	// Export metrics
	exportsGenerated prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jurybox",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers all metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ledgerUpserts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_upserts_total",
		Help:      "Total number of score records written to the ledger",
	})

	m.ledgerReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_reads_total",
		Help:      "Total number of full ledger reads",
	})

	m.ledgerRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_records",
		Help:      "Number of score records currently in the ledger",
	})

	m.ledgerLockWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_lock_wait_seconds",
		Help:      "Histogram of time spent waiting for the ledger file lock",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerLockTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_lock_timeouts_total",
		Help:      "Total number of ledger lock acquisitions that timed out",
	})

	m.ledgerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_errors_total",
		Help:      "Total number of ledger storage failures",
	})

	m.rankingComputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_computes_total",
		Help:      "Total number of normalization computations",
	})

	m.rankingComputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_compute_seconds",
		Help:      "Histogram of normalization computation duration",
		Buckets:   m.histogramBuckets,
	})

	m.rankingRecordsIn = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_records_in",
		Help:      "Number of records consumed by the last normalization run",
	})

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of accepted score submissions",
	})

	m.submissionsClamped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_clamped_total",
		Help:      "Total number of submissions with at least one value clamped into range",
	})

	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total number of rejected score submissions",
	})

	m.exportsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_generated_total",
		Help:      "Total number of workbook exports generated",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request duration by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "Total HTTP error responses by endpoint and error class",
	}, []string{"endpoint", "class"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Process heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Number of goroutines",
	})
}

// Ledger metrics.

// RecordLedgerUpsert increments the ledger upsert counter.
func RecordLedgerUpsert() {
	globalManager.ledgerUpserts.Inc()
}

// RecordLedgerRead increments the ledger read counter.
func RecordLedgerRead() {
	globalManager.ledgerReads.Inc()
}

// UpdateLedgerRecords sets the current ledger record count.
func UpdateLedgerRecords(count int) {
	globalManager.ledgerRecords.Set(float64(count))
}

// RecordLedgerLockWait records time spent waiting for the ledger lock.
func RecordLedgerLockWait(seconds float64) {
	globalManager.ledgerLockWait.Observe(seconds)
}

// RecordLedgerLockTimeout increments the lock timeout counter.
func RecordLedgerLockTimeout() {
	globalManager.ledgerLockTimeouts.Inc()
}

// RecordLedgerError increments the ledger storage failure counter.
func RecordLedgerError() {
	globalManager.ledgerErrors.Inc()
}

// Normalization metrics.

// RecordRankingCompute records one normalization run and its duration.
func RecordRankingCompute(seconds float64, records int) {
	globalManager.rankingComputes.Inc()
	globalManager.rankingComputeDuration.Observe(seconds)
	globalManager.rankingRecordsIn.Set(float64(records))
}

// Submission metrics.

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionClamped increments the clamped submissions counter.
func RecordSubmissionClamped() {
	globalManager.submissionsClamped.Inc()
}

// RecordSubmissionRejected increments the rejected submissions counter.
func RecordSubmissionRejected() {
	globalManager.submissionsRejected.Inc()
}

// RecordExportGenerated increments the export counter.
func RecordExportGenerated() {
	globalManager.exportsGenerated.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// RecordHTTPError records an error response by class (client, server, lock_timeout).
func RecordHTTPError(endpoint, class string) {
	globalManager.httpErrors.WithLabelValues(endpoint, class).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the global manager, for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
