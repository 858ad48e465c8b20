package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"enrollpulse/internal/infrastructure"
)

// ErrorHandler provides centralized error handling for the HTTP surface,
// mapping application error kinds onto API responses.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to a structured API response and writes it
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := infrastructure.GetTraceID(r.Context())

	apiErr := h.toAPIError(err)

	logFn := h.logger.ErrorContext
	if apiErr.StatusCode < http.StatusInternalServerError {
		logFn = h.logger.WarnContext
	}
	logFn(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", apiErr.StatusCode),
	)

	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

// toAPIError maps an error to its API representation
func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInputNotFound:
			return NewAPIErrorWithDetails(http.StatusNotFound, string(appErr.Kind), appErr.Message, appErr.Context)
		case KindMalformedMapping, KindConfig:
			return NewAPIErrorWithDetails(http.StatusBadRequest, string(appErr.Kind), appErr.Message, appErr.Context)
		default:
			return NewAPIErrorWithDetails(http.StatusInternalServerError, string(appErr.Kind), appErr.Message, appErr.Context)
		}
	}

	return ErrInternalServer
}
