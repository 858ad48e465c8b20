package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"enrollpulse/internal/aggregate"
	apperrors "enrollpulse/internal/errors"
)

// SummaryDocument is the JSON export consumed by the web interface
type SummaryDocument struct {
	Results     []aggregate.Result   `json:"results"`
	Count       int                  `json:"count"`
	Metrics     aggregate.KeyMetrics `json:"metrics"`
	GeneratedAt string               `json:"generated_at"`
}

// WriteSummaryJSON writes aggregation results plus headline metrics as an
// indented JSON document.
func WriteSummaryJSON(path string, results []aggregate.Result, metrics aggregate.KeyMetrics) error {
	slog.Info("writing summary JSON",
		slog.String("path", path),
		slog.Int("result_count", len(results)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create output directory", err)
	}

	doc := SummaryDocument{
		Results:     results,
		Count:       len(results),
		Metrics:     metrics,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to create %s", path), err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return apperrors.NewExportError("failed to encode summary JSON", err)
	}
	return nil
}
