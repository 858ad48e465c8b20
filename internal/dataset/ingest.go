package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "enrollpulse/internal/errors"
)

// Table is a raw delimited input: a header plus data rows, before cleaning
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// ReadCSV reads a delimited file into a Table, tolerating a UTF-8 BOM and
// ragged rows. A missing file is reported as InputNotFound so the caller can
// decide its fallback (e.g. generated sample data).
func ReadCSV(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, apperrors.NewInputNotFound(path, err)
		}
		return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
	}
	if len(records) == 0 {
		return Table{}, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = normalizeColumn(col)
	}

	return Table{Source: path, Header: header, Rows: records[1:]}, nil
}

// DiscoverCSVFiles returns the CSV files in dir matching pattern, sorted by
// name for deterministic processing order.
func DiscoverCSVFiles(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, apperrors.NewInputNotFound(dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadAndClean reads every file, cleans it with the shared mapping, and
// concatenates the results. Files are read concurrently; cleaning semantics
// are unchanged because each file is cleaned independently and row order
// within a file is preserved. The aggregate drop count covers all files.
func LoadAndClean(ctx context.Context, files []string, mapping FieldMapping) (CleanResult, error) {
	if len(files) == 0 {
		return CleanResult{}, apperrors.NewInputNotFound("no input files", nil)
	}

	logger := slog.Default()

	results := make([]CleanResult, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			table, err := ReadCSV(path)
			if err != nil {
				return err
			}

			cleaned, err := Clean(table.Header, table.Rows, mapping)
			if err != nil {
				return fmt.Errorf("cleaning %s: %w", path, err)
			}

			logger.Info("loaded input file",
				slog.String("file", path),
				slog.Int("rows", len(cleaned.Records)),
				slog.Int("dropped", cleaned.Dropped))

			mu.Lock()
			results[i] = cleaned
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return CleanResult{}, err
	}

	var combined CleanResult
	for _, r := range results {
		combined.Records = append(combined.Records, r.Records...)
		combined.Dropped += r.Dropped
	}
	return combined, nil
}
