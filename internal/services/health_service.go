package services

import (
	"log/slog"
	"runtime"
	"time"
)

// HealthService reports process liveness and dataset readiness
type HealthService struct {
	logger    *slog.Logger
	dataset   *DatasetService
	startedAt time.Time
	version   string
}

// HealthStatus is the health endpoint payload
type HealthStatus struct {
	Status     string        `json:"status"`
	Version    string        `json:"version"`
	GoVersion  string        `json:"go_version"`
	Uptime     string        `json:"uptime"`
	Dataset    DatasetStatus `json:"dataset"`
	Goroutines int           `json:"goroutines"`
}

func NewHealthService(dataset *DatasetService, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		logger:    logger.With(slog.String("component", "health_service")),
		dataset:   dataset,
		startedAt: time.Now(),
		version:   version,
	}
}

// Check returns the current health snapshot. The process is "degraded"
// rather than unhealthy when no dataset is loaded; the API can still serve
// reloads.
func (h *HealthService) Check() HealthStatus {
	ds := h.dataset.Status()
	status := "healthy"
	if !ds.Loaded {
		status = "degraded"
	}
	return HealthStatus{
		Status:     status,
		Version:    h.version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Dataset:    ds,
		Goroutines: runtime.NumGoroutine(),
	}
}
