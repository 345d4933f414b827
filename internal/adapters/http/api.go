package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

type diagnosisResponse struct {
	*domain.Diagnosis
	Headline       string `json:"headline"`
	ConfidenceText string `json:"confidence_text"`
}

func (rt *Router) createPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, errMethodNotAllowed)
		return
	}

	d, err := rt.predictUpload(w, r, "api")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagnosisResponse{
		Diagnosis:      d,
		Headline:       d.Headline(),
		ConfidenceText: d.ConfidenceText(),
	})
}

func (rt *Router) exportPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, errMethodNotAllowed)
		return
	}
	if rt.exporter == nil {
		writeError(w, r, errNotFound)
		return
	}

	d, err := rt.predictUpload(w, r, "export")
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := rt.exporter.Export(d)
	if err != nil {
		writeError(w, r, fmt.Errorf("export diagnosis: %w", err))
		return
	}

	filename := fmt.Sprintf("prediction-%s%s", d.Result.PredictedClass, rt.exporter.FileExtension())
	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// predictUpload reads the upload, runs one prediction and records its outcome.
func (rt *Router) predictUpload(w http.ResponseWriter, r *http.Request, endpoint string) (*domain.Diagnosis, error) {
	start := time.Now()

	filename, image, err := readUpload(w, r, rt.cfg.UploadMaxBytes)
	if err != nil {
		rt.recordPrediction(endpoint, start, err)
		return nil, err
	}

	d, err := rt.diagnoser.Predict(r.Context(), filename, image)
	rt.recordPrediction(endpoint, start, err)
	if err != nil {
		return nil, err
	}
	if rt.metrics != nil {
		rt.metrics.RecordDiagnosis(serviceName, string(d.Result.PredictedClass), d.Result.Confidence, d.ConfidenceMismatch)
	}
	return d, nil
}
