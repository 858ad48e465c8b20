// Command web serves the enrollment analysis REST API, the websocket feed
// and the Prometheus scrape endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"enrollpulse/internal/config"
	"enrollpulse/internal/infrastructure"
	"enrollpulse/internal/services"
	transport "enrollpulse/internal/transport/http"
	"enrollpulse/internal/websocket"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	hub.Start()
	defer hub.Stop()

	datasetService := services.NewDatasetService(cfg, logger, hub)
	healthService := services.NewHealthService(datasetService, version, logger)

	// Load whatever is already in the data directory. An empty directory is
	// not fatal; the API reports degraded until a reload finds files.
	if status, err := datasetService.Load(context.Background()); err != nil {
		logger.Warn("Initial dataset load failed", "error", err)
	} else {
		logger.Info("Initial dataset loaded",
			slog.Int("records", status.RecordCount),
			slog.Int("dropped", status.DroppedRows))
	}

	router := transport.NewRouter(transport.RouterDeps{
		Config:  cfg,
		Logger:  logger,
		Dataset: datasetService,
		Health:  healthService,
		Hub:     hub,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			slog.String("addr", server.Addr),
			slog.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
