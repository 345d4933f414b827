package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/skinlens/lesion-dashboard/internal/adapters/http"
	"github.com/skinlens/lesion-dashboard/internal/bootstrap"
	"github.com/skinlens/lesion-dashboard/internal/config"
	"github.com/skinlens/lesion-dashboard/internal/observability/logging"
)

func main() {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger("dashboard", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}

	router := httpadapter.NewRouter(cfg, app.PredictUC, app.Exporter).
		WithMetrics(app.Metrics).
		WithCircuitState(app.Client.CircuitState).
		Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.InferenceTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("dashboard_listening", "port", cfg.APIPort, "inference_url", app.Client.Endpoint())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("dashboard_server_error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard_shutdown_error", "error", err)
	}
}

