package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

const maxResponseBytes = 1 << 20

type predictionPayload struct {
	PredictedClass string             `json:"predicted_class"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

func (c *Client) postImage(ctx context.Context, filename string, image []byte) (domain.PredictionResult, error) {
	body, contentType, err := encodeUpload(c.fileField, filename, image)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrTransport, "classify request", err)
	}
	defer resp.Body.Close()

	// Only 200 counts as success; the body of any other status is left unread.
	if resp.StatusCode != http.StatusOK {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrServiceFailure, "classify", &HTTPStatusError{
			Operation:  "classify",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrTransport, "read classify response", err)
	}
	if len(raw) > maxResponseBytes {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrMalformedResponse, "read classify response",
			fmt.Errorf("body exceeds %d bytes", maxResponseBytes))
	}
	return c.decodePrediction(raw)
}

func (c *Client) decodePrediction(raw []byte) (domain.PredictionResult, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrMalformedResponse, "decode classify response", err)
	}
	if err := c.schema.VisitJSON(generic); err != nil {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrMalformedResponse, "validate classify response", err)
	}

	var payload predictionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrMalformedResponse, "decode classify response", err)
	}

	probs := make(map[domain.ClassLabel]float64, len(payload.Probabilities))
	for label, p := range payload.Probabilities {
		probs[domain.ClassLabel(label)] = p
	}
	return domain.PredictionResult{
		PredictedClass: domain.ClassLabel(payload.PredictedClass),
		Confidence:     payload.Confidence,
		Probabilities:  probs,
	}, nil
}

func encodeUpload(field, filename string, image []byte) (io.Reader, string, error) {
	name := strings.TrimSpace(filepath.Base(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = field
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
