package ports

import (
	"context"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

// LesionClassifier submits image bytes to the remote classification service.
type LesionClassifier interface {
	Classify(ctx context.Context, filename string, image []byte) (domain.PredictionResult, error)
}

// DiagnosisExporter renders a diagnosis into a downloadable document.
type DiagnosisExporter interface {
	Export(d *domain.Diagnosis) ([]byte, error)
	ContentType() string
	FileExtension() string
}
