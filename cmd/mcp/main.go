package main

import (
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/skinlens/lesion-dashboard/internal/adapters/mcp"
	"github.com/skinlens/lesion-dashboard/internal/bootstrap"
	"github.com/skinlens/lesion-dashboard/internal/config"
	"github.com/skinlens/lesion-dashboard/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	// stdout carries the protocol, so logs go to stderr.
	logger := logging.New(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := bootstrap.New(cfg)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}

	srv := mcpadapter.New(app.PredictUC, cfg.UploadMaxBytes).MCPServer(version)
	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp_server_error", "error", err)
		os.Exit(1)
	}
}
