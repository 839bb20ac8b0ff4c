package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "seedforge"

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Generation metrics
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	RowsGenerated      prometheus.Counter
	Warnings           prometheus.Counter

	// Overlay metrics
	OverlayRequestsTotal   *prometheus.CounterVec
	OverlayRequestDuration prometheus.Histogram

	// Export metrics
	ExportsTotal  *prometheus.CounterVec
	ArtifactBytes prometheus.Histogram

	Registry prometheus.Gatherer
	logger   *zap.Logger
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Total number of generation requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_stage_duration_seconds",
				Help:      "Duration of each generation stage in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"stage"},
		),
		RowsGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_generated_total",
				Help:      "Total number of generated rows",
			},
		),
		Warnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_warnings_total",
				Help:      "Total number of warnings attached to generation results",
			},
		),
		OverlayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "overlay_requests_total",
				Help:      "Total number of AI enhancement calls",
			},
			[]string{"status"},
		),
		OverlayRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "overlay_request_duration_seconds",
				Help:      "AI enhancement call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of encoded artifacts by format",
			},
			[]string{"format"},
		),
		ArtifactBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_size_bytes",
				Help:      "Size of encoded artifacts in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
			},
		),
		logger: logger,
	}
	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.Registry = g
	}
	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		status := categorizeStatus(statusCode)
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// RecordGeneration counts one finished preview, generate or export call.
func (m *Metrics) RecordGeneration(operation string, rows, warnings int, err error) {
	m.safeExecute("RecordGeneration", func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.GenerationsTotal.WithLabelValues(operation, outcome).Inc()
		if err == nil {
			m.RowsGenerated.Add(float64(rows))
			m.Warnings.Add(float64(warnings))
		}
	})
}

func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.safeExecute("RecordStage", func() {
		m.GenerationDuration.WithLabelValues(stage).Observe(duration.Seconds())
	})
}

// RecordOverlayCall records one call to the enhancement collaborator.
// statusCode is 0 when no HTTP response was received.
func (m *Metrics) RecordOverlayCall(statusCode int, duration time.Duration, err error) {
	m.safeExecute("RecordOverlayCall", func() {
		status := strconv.Itoa(statusCode)
		if err != nil && statusCode == 0 {
			status = "error"
		}
		m.OverlayRequestsTotal.WithLabelValues(status).Inc()
		m.OverlayRequestDuration.Observe(duration.Seconds())
	})
}

func (m *Metrics) RecordExport(format string, size int) {
	m.safeExecute("RecordExport", func() {
		m.ExportsTotal.WithLabelValues(format).Inc()
		m.ArtifactBytes.Observe(float64(size))
	})
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint checks if endpoint should be excluded from metrics
func ShouldSkipEndpoint(path string) bool {
	return path == "/metrics" || path == "/api/health"
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
