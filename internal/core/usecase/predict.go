package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/core/ports"
)

const DefaultConfidenceTolerance = 0.01

type PredictUseCase struct {
	classifier ports.LesionClassifier
	catalog    *domain.LabelCatalog
	tolerance  float64
}

func NewPredictUseCase(
	classifier ports.LesionClassifier,
	catalog *domain.LabelCatalog,
	tolerance float64,
) *PredictUseCase {
	if catalog == nil {
		catalog = domain.HAM10000Catalog()
	}
	if tolerance < 0 {
		tolerance = DefaultConfidenceTolerance
	}
	return &PredictUseCase{
		classifier: classifier,
		catalog:    catalog,
		tolerance:  tolerance,
	}
}

func (uc *PredictUseCase) Catalog() *domain.LabelCatalog {
	return uc.catalog
}

// Predict runs one classification round trip and resolves it for display.
func (uc *PredictUseCase) Predict(ctx context.Context, filename string, image []byte) (*domain.Diagnosis, error) {
	if len(image) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "predict", errors.New("uploaded image is empty"))
	}

	start := time.Now()
	result, err := uc.classifier.Classify(ctx, filename, image)
	if domain.IsKind(err, domain.ErrCanceled) {
		slog.InfoContext(ctx, "prediction_canceled",
			"filename", filename,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
		return nil, err
	}
	if err != nil {
		slog.WarnContext(ctx, "prediction_failed",
			"filename", filename,
			"bytes", len(image),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
			"error", err,
		)
		return nil, err
	}

	diagnosis, err := domain.NewDiagnosis(uc.catalog, result, uc.tolerance)
	if err != nil {
		slog.WarnContext(ctx, "prediction_unknown_class",
			"predicted_class", string(result.PredictedClass),
			"error", err,
		)
		return nil, err
	}

	if diagnosis.ConfidenceMismatch {
		p, present := result.Probabilities[result.PredictedClass]
		slog.WarnContext(ctx, "prediction_confidence_mismatch",
			"predicted_class", string(result.PredictedClass),
			"confidence", result.Confidence,
			"class_probability", p,
			"class_in_probabilities", present,
			"tolerance", uc.tolerance,
		)
	}

	slog.InfoContext(ctx, "prediction_completed",
		"predicted_class", string(result.PredictedClass),
		"confidence", result.Confidence,
		"classes", len(result.Probabilities),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return diagnosis, nil
}
