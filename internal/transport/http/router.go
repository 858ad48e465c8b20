package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"enrollpulse/internal/config"
	"enrollpulse/internal/metrics"
	"enrollpulse/internal/middleware"
	"enrollpulse/internal/services"
	"enrollpulse/internal/websocket"
)

// RouterDeps carries everything the router needs wired in
type RouterDeps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Dataset *services.DatasetService
	Health  *services.HealthService
	Hub     *websocket.Hub
}

// NewRouter assembles the full HTTP surface: middleware chain, REST API,
// websocket endpoint and Prometheus scrape target.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.SecurityHeaders)
	if deps.Config.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(deps.Config.Server.RateLimit)
		r.Use(limiter.Handler)
	}

	datasetHandler := NewDatasetHandler(deps.Dataset, deps.Config.Analysis.TopN, deps.Logger)
	healthHandler := NewHealthHandler(deps.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.Health)
		api.Get("/ready", healthHandler.Ready)

		api.Route("/dataset", func(ds chi.Router) {
			ds.Get("/status", datasetHandler.Status)
			ds.Post("/reload", datasetHandler.Reload)
		})

		api.Get("/summary", datasetHandler.Summary)
		api.Get("/top", datasetHandler.Top)
		api.Get("/trends", datasetHandler.Trends)
		api.Get("/metrics", datasetHandler.KeyMetrics)
		api.Get("/insights", datasetHandler.Insights)
		api.Get("/seasonal", datasetHandler.Seasonal)
		api.Get("/regions", datasetHandler.Regions)
		api.Get("/download/summary.csv", datasetHandler.DownloadSummary)
	})

	if deps.Hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			if err := websocket.ServeWS(deps.Hub, w, r); err != nil {
				deps.Logger.Warn("websocket upgrade failed",
					slog.String("error", err.Error()))
			}
		})
	}

	r.Handle("/metrics", metrics.Handler())

	return r
}
