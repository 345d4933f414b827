package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	predictionsTotal   *prometheus.CounterVec
	predictedClass     *prometheus.CounterVec
	predictionDuration *prometheus.HistogramVec
	confidence         *prometheus.HistogramVec
	confidenceMismatch *prometheus.CounterVec
	circuitState       *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesion",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lesion",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lesion",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	predictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesion",
			Subsystem: "prediction",
			Name:      "requests_total",
			Help:      "Prediction attempts by outcome (ok or error kind).",
		},
		[]string{"service", "endpoint", "outcome"},
	)
	predictedClass := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesion",
			Subsystem: "prediction",
			Name:      "class_total",
			Help:      "Successful predictions by predicted class.",
		},
		[]string{"service", "class"},
	)
	predictionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lesion",
			Subsystem: "prediction",
			Name:      "duration_seconds",
			Help:      "Round trip to the inference service in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"service", "endpoint"},
	)
	confidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lesion",
			Subsystem: "prediction",
			Name:      "confidence",
			Help:      "Distribution of reported confidence values.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"service"},
	)
	confidenceMismatch := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesion",
			Subsystem: "prediction",
			Name:      "confidence_mismatch_total",
			Help:      "Responses whose confidence differs from the predicted class probability.",
		},
		[]string{"service"},
	)
	circuitState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lesion",
			Subsystem: "inference",
			Name:      "circuit_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		predictionsTotal,
		predictedClass,
		predictionDuration,
		confidence,
		confidenceMismatch,
		circuitState,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		predictionsTotal:   predictionsTotal,
		predictedClass:     predictedClass,
		predictionDuration: predictionDuration,
		confidence:         confidence,
		confidenceMismatch: confidenceMismatch,
		circuitState:       circuitState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps label cardinality bounded.
func normalizePath(path string) string {
	switch path {
	case "/", "/model", "/predict", "/healthz", "/metrics", "/openapi.yaml",
		"/v1/predictions", "/v1/predictions/export", "/v1/classes":
		return path
	default:
		return "other"
	}
}

// RecordPrediction counts one attempt. outcome is "ok" or an error kind label.
func (m *HTTPServerMetrics) RecordPrediction(service, endpoint, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.predictionsTotal.WithLabelValues(service, endpoint, outcome).Inc()
	m.predictionDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordDiagnosis(service, class string, confidence float64, mismatch bool) {
	m.predictedClass.WithLabelValues(service, class).Inc()
	m.confidence.WithLabelValues(service).Observe(confidence)
	if mismatch {
		m.confidenceMismatch.WithLabelValues(service).Inc()
	}
}

// CircuitObserver returns a breaker state observer bound to service.
func (m *HTTPServerMetrics) CircuitObserver(service string) func(operation string, from, to gobreaker.State) {
	return func(operation string, _, to gobreaker.State) {
		m.circuitState.WithLabelValues(service, operation).Set(float64(to))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
