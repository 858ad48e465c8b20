package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"enrollpulse/internal/aggregate"
	apperrors "enrollpulse/internal/errors"
	"enrollpulse/internal/exporter"
	"enrollpulse/internal/services"
)

const queryDateFormat = "2006-01-02"

// DatasetHandler serves the analysis endpoints backed by the dataset service
type DatasetHandler struct {
	service  *services.DatasetService
	errors   *apperrors.ErrorHandler
	logger   *slog.Logger
	defaultN int
}

func NewDatasetHandler(service *services.DatasetService, defaultN int, logger *slog.Logger) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_handler"))
	return &DatasetHandler{
		service:  service,
		errors:   apperrors.NewErrorHandler(logger),
		logger:   logger,
		defaultN: defaultN,
	}
}

// Status returns the dataset load state
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// Reload re-reads the data directory and swaps the dataset
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Reload(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, status)
}

// Summary aggregates by region, day or month
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	groupBy, ok := aggregate.ParseGroupBy(queryOrDefault(r, "group_by", "region"))
	if !ok {
		render.Render(w, r, apperrors.ErrValidation("group_by", "must be one of region, day, month"))
		return
	}

	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	results, err := h.service.Summary(r.Context(), groupBy, filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"group_by": groupBy.String(),
		"count":    len(results),
		"results":  results,
	})
}

// Top ranks regions on the requested field
func (h *DatasetHandler) Top(w http.ResponseWriter, r *http.Request) {
	byField := queryOrDefault(r, "by", aggregate.RankByTotal)
	ascending := queryOrDefault(r, "order", "desc") == "asc"

	n := h.defaultN
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			render.Render(w, r, apperrors.ErrValidation("n", "must be a positive integer"))
			return
		}
		n = parsed
	}

	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	results, err := h.service.Top(r.Context(), byField, n, ascending, filter)
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindInputNotFound) {
			render.Render(w, r, apperrors.ErrValidation("by", err.Error()))
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"by":      byField,
		"count":   len(results),
		"results": results,
	})
}

// Trends returns the bucketed time series with rolling mean and forecast
func (h *DatasetHandler) Trends(w http.ResponseWriter, r *http.Request) {
	bucket, ok := aggregate.ParseBucket(queryOrDefault(r, "bucket", "day"))
	if !ok {
		render.Render(w, r, apperrors.ErrValidation("bucket", "must be one of day, month"))
		return
	}

	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	report, err := h.service.Trends(r.Context(), bucket, filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// KeyMetrics returns the headline dataset numbers
func (h *DatasetHandler) KeyMetrics(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	metrics, err := h.service.KeyMetrics(filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, metrics)
}

// Insights returns the derived findings
func (h *DatasetHandler) Insights(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	insights, err := h.service.Insights(filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"insights": insights})
}

// Seasonal returns the per-calendar-month volume profile
func (h *DatasetHandler) Seasonal(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	profile, err := h.service.Seasonal(filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"profile": profile})
}

// Regions lists the distinct region keys
func (h *DatasetHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions()
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"regions": regions})
}

// DownloadSummary streams the per-region aggregation as a CSV attachment
func (h *DatasetHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	results, err := h.service.Summary(r.Context(), aggregate.ByRegion, filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="region_summary.csv"`)
	if err := exporter.StreamResultsCSV(w, results); err != nil {
		h.logger.ErrorContext(r.Context(), "streaming summary csv failed",
			slog.String("error", err.Error()))
	}
}

func queryOrDefault(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return fallback
}

// parseFilter reads the shared from/to/regions query parameters. Dates use
// the 2006-01-02 form; regions is a comma-separated list.
func parseFilter(r *http.Request) (services.FilterOptions, *apperrors.APIError) {
	var filter services.FilterOptions
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(queryDateFormat, raw)
		if err != nil {
			return filter, apperrors.ErrValidation("from", "must be a YYYY-MM-DD date")
		}
		filter.From = &ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(queryDateFormat, raw)
		if err != nil {
			return filter, apperrors.ErrValidation("to", "must be a YYYY-MM-DD date")
		}
		filter.To = &ts
	}
	if raw := q.Get("regions"); raw != "" {
		for _, region := range strings.Split(raw, ",") {
			if region = strings.TrimSpace(region); region != "" {
				filter.Regions = append(filter.Regions, region)
			}
		}
	}
	return filter, nil
}
