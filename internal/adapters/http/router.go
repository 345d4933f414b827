package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/skinlens/lesion-dashboard/internal/apispec"
	"github.com/skinlens/lesion-dashboard/internal/config"
	"github.com/skinlens/lesion-dashboard/internal/core/ports"
	"github.com/skinlens/lesion-dashboard/internal/observability/metrics"
)

const serviceName = "dashboard"

type Router struct {
	cfg       config.Config
	diagnoser ports.LesionDiagnoser
	exporter  ports.DiagnosisExporter
	metrics   *metrics.HTTPServerMetrics
	circuit   func() string
}

func NewRouter(
	cfg config.Config,
	diagnoser ports.LesionDiagnoser,
	exporter ports.DiagnosisExporter,
) *Router {
	return &Router{
		cfg:       cfg,
		diagnoser: diagnoser,
		exporter:  exporter,
	}
}

// WithMetrics enables request and prediction metrics plus the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithCircuitState reports the inference breaker state on /healthz.
func (rt *Router) WithCircuitState(state func() string) *Router {
	rt.circuit = state
	return rt
}

func (rt *Router) Handler() http.Handler {
	predictGate := func(h http.HandlerFunc) http.Handler {
		wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
		gated := backpressureMiddleware(h, rt.cfg.APIBackpressureMaxInFlight, wait)
		return rateLimitMiddleware(gated, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.yaml", rt.openAPIDocument)
	mux.HandleFunc("/", rt.overviewPage)
	mux.HandleFunc("/model", rt.modelPage)
	submitPredict := predictGate(rt.predictPage)
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		// Only submissions consume prediction capacity; the empty form is free.
		if r.Method == http.MethodPost {
			submitPredict.ServeHTTP(w, r)
			return
		}
		rt.predictPage(w, r)
	})
	mux.HandleFunc("/v1/classes", rt.listClasses)
	mux.Handle("/v1/predictions", predictGate(rt.createPrediction))
	mux.Handle("/v1/predictions/export", predictGate(rt.exportPrediction))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]string{"status": "ok"}
	if rt.circuit != nil {
		payload["inference_circuit"] = rt.circuit()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apispec.Document())
}

func (rt *Router) listClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": rt.diagnoser.Catalog().Entries()})
}

func (rt *Router) recordPrediction(endpoint string, start time.Time, err error) {
	if rt.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errorKindLabel(err)
	}
	rt.metrics.RecordPrediction(serviceName, endpoint, outcome, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
