package errors

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollpulse/internal/infrastructure"
)

func TestHandleErrorLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	handler := NewErrorHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "req-1234"))
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, NewInputNotFound("data", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1234", entry["request_id"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input not found", NewInputNotFound("missing.csv", nil), http.StatusNotFound},
		{"malformed mapping", NewMalformedMapping("ghost_column"), http.StatusBadRequest},
		{"config error", NewConfigError("bad fraction", nil), http.StatusBadRequest},
		{"parsing error", NewParsingError("bad row", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewErrorHandler(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			handler.HandleError(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
