package bootstrap

import (
	"fmt"
	"time"

	"github.com/skinlens/lesion-dashboard/internal/config"
	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/core/usecase"
	"github.com/skinlens/lesion-dashboard/internal/infrastructure/export/xlsx"
	"github.com/skinlens/lesion-dashboard/internal/infrastructure/inference"
	"github.com/skinlens/lesion-dashboard/internal/infrastructure/resilience"
	"github.com/skinlens/lesion-dashboard/internal/observability/metrics"
)

const metricsService = "dashboard"

type App struct {
	Config config.Config

	Catalog   *domain.LabelCatalog
	Metrics   *metrics.HTTPServerMetrics
	Executor  *resilience.Executor
	Client    *inference.Client
	PredictUC *usecase.PredictUseCase
	Exporter  *xlsx.Exporter
}

func New(cfg config.Config) (*App, error) {
	catalog := domain.HAM10000Catalog()
	serverMetrics := metrics.NewHTTPServerMetrics(metricsService)

	executor := resilience.NewExecutor(
		resilienceConfig(cfg),
		serverMetrics.CircuitObserver(metricsService),
	)

	client, err := inference.NewWithOptions(cfg.InferenceURL, inference.Options{
		Timeout:            cfg.InferenceTimeout(),
		FileField:          cfg.InferenceFileField,
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init inference client: %w", err)
	}

	predictUC := usecase.NewPredictUseCase(client, catalog, cfg.ConfidenceTolerance)

	return &App{
		Config:    cfg,
		Catalog:   catalog,
		Metrics:   serverMetrics,
		Executor:  executor,
		Client:    client,
		PredictUC: predictUC,
		Exporter:  xlsx.NewExporter(),
	}, nil
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.RetryMaxAttempts
	if cfg.RetryInitialBackoffMS > 0 {
		out.RetryInitialBackoff = time.Duration(cfg.RetryInitialBackoffMS) * time.Millisecond
	}
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		out.BreakerFailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeoutSeconds > 0 {
		out.BreakerOpenTimeout = time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second
	}
	return out
}
