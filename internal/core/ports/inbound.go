package ports

import (
	"context"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

// LesionDiagnoser is the inbound contract for a single upload-to-diagnosis round trip.
type LesionDiagnoser interface {
	Predict(ctx context.Context, filename string, image []byte) (*domain.Diagnosis, error)
	Catalog() *domain.LabelCatalog
}
