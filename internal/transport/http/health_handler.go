package http

import (
	"net/http"

	"github.com/go-chi/render"

	"enrollpulse/internal/services"
)

// HealthHandler exposes liveness and readiness endpoints
type HealthHandler struct {
	service *services.HealthService
}

func NewHealthHandler(service *services.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health returns the full health snapshot
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Check())
}

// Ready returns 200 once a dataset is loaded, 503 otherwise
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.service.Check()
	if status.Status != "healthy" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, map[string]string{"status": status.Status})
}
