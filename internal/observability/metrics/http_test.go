package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPServerMetrics("dashboard")
	handler := m.Middleware("dashboard", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("dashboard", http.MethodPost, "/predict", "502"))
	if got != 1 {
		t.Fatalf("expected 1 request counted, got %v", got)
	}
}

func TestRecordPredictionAndDiagnosis(t *testing.T) {
	m := NewHTTPServerMetrics("dashboard")
	m.RecordPrediction("dashboard", "api", "ok", 120*time.Millisecond)
	m.RecordPrediction("dashboard", "api", "", time.Millisecond)
	m.RecordDiagnosis("dashboard", "mel", 0.87, true)

	if got := testutil.ToFloat64(m.predictionsTotal.WithLabelValues("dashboard", "api", "ok")); got != 1 {
		t.Fatalf("expected ok outcome 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.predictionsTotal.WithLabelValues("dashboard", "api", "unknown")); got != 1 {
		t.Fatalf("expected unknown outcome 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.predictedClass.WithLabelValues("dashboard", "mel")); got != 1 {
		t.Fatalf("expected mel class 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.confidenceMismatch.WithLabelValues("dashboard")); got != 1 {
		t.Fatalf("expected mismatch 1, got %v", got)
	}
}

func TestCircuitObserverSetsGauge(t *testing.T) {
	m := NewHTTPServerMetrics("dashboard")
	m.CircuitObserver("dashboard")("inference.classify", gobreaker.StateClosed, gobreaker.StateOpen)

	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("dashboard", "inference.classify")); got != float64(gobreaker.StateOpen) {
		t.Fatalf("expected open gauge, got %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewHTTPServerMetrics("dashboard")
	m.RecordPrediction("dashboard", "form", "ok", time.Second)

	res := httptest.NewRecorder()
	m.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(res.Body.String(), "lesion_prediction_requests_total") {
		t.Fatalf("expected prediction counter in exposition")
	}
}
