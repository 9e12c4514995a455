// Package metrics provides Prometheus metrics for the winrate service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// trainingBuckets span sub-second toy datasets to multi-minute fits.
var trainingBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the winrate service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Training
	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	trainingRows     *prometheus.GaugeVec
	trainingScore    *prometheus.GaugeVec
	lastTrainedUnix  prometheus.Gauge

	// Prediction
	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec

	// Data
	datasetRows  prometheus.Gauge
	matchesBuilt *prometheus.CounterVec

	// Model store
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "winrate",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.trainingRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Training runs by outcome",
	}, []string{"status"})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Wall time of a training run including evaluation and persistence",
		Buckets:   trainingBuckets,
	})

	m.trainingRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_rows",
		Help:      "Rows in each partition of the last training run",
	}, []string{"partition"})

	m.trainingScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_score",
		Help:      "Held-out scores of the last training run",
	}, []string{"metric"})

	m.lastTrainedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_trained_unix",
		Help:      "Unix time of the last successful training run",
	})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Predictions served by mode and fallback source",
	}, []string{"mode", "source"})

	m.predictionLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_seconds",
		Help:      "Prediction latency including model and dataset loading",
		Buckets:   m.histogramBuckets,
	}, []string{"mode"})

	m.datasetRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows",
		Help:      "Rows in the most recently loaded dataset",
	})

	m.matchesBuilt = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_built_total",
		Help:      "Raw matches seen by the dataset builder by outcome",
	}, []string{"outcome"})

	m.storeOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operations_total",
		Help:      "Model store operations by backend, operation and status",
	}, []string{"backend", "op", "status"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_seconds",
		Help:      "Model store operation latency",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "op"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Errors by component and type",
		},
		[]string{"component", "error_type"},
	)
}

// Training Metrics Functions.

// RecordTrainingRun counts a finished training run and observes its duration.
func RecordTrainingRun(status string, d time.Duration) {
	globalManager.trainingRuns.WithLabelValues(status).Inc()
	globalManager.trainingDuration.Observe(d.Seconds())
	if status == StatusOK {
		globalManager.lastTrainedUnix.SetToCurrentTime()
	}
}

// UpdateTrainingRows sets the partition sizes of the last run.
func UpdateTrainingRows(train, test int) {
	globalManager.trainingRows.WithLabelValues("train").Set(float64(train))
	globalManager.trainingRows.WithLabelValues("test").Set(float64(test))
}

// UpdateTrainingScores sets the held-out scores of the last run. A nil
// ROC-AUC clears that series.
func UpdateTrainingScores(accuracy, f1 float64, rocAUC *float64) {
	globalManager.trainingScore.WithLabelValues("accuracy").Set(accuracy)
	globalManager.trainingScore.WithLabelValues("f1").Set(f1)
	if rocAUC == nil {
		globalManager.trainingScore.DeleteLabelValues("roc_auc")
		return
	}
	globalManager.trainingScore.WithLabelValues("roc_auc").Set(*rocAUC)
}

// Prediction Metrics Functions.

// RecordPrediction counts a prediction and observes its latency.
func RecordPrediction(mode, source string, d time.Duration) {
	globalManager.predictions.WithLabelValues(mode, source).Inc()
	globalManager.predictionLatency.WithLabelValues(mode).Observe(d.Seconds())
}

// Data Metrics Functions.

// UpdateDatasetRows sets the row count of the last loaded dataset.
func UpdateDatasetRows(n int) {
	globalManager.datasetRows.Set(float64(n))
}

// RecordMatchBuilt counts one raw match by builder outcome (written, duplicate, skipped).
func RecordMatchBuilt(outcome string) {
	globalManager.matchesBuilt.WithLabelValues(outcome).Inc()
}

// Store Metrics Functions.

// RecordStoreOperation counts a model store operation and observes its latency.
func RecordStoreOperation(backend, op, status string, d time.Duration) {
	globalManager.storeOperations.WithLabelValues(backend, op, status).Inc()
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(d.Seconds())
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
