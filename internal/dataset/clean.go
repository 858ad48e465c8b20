package dataset

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// CleanResult is the outcome of one cleaning pass. Dropped is reported so
// callers never lose track of how many rows were rejected.
type CleanResult struct {
	Records []Record
	Dropped int
}

// Clean normalizes raw delimited rows into Records according to the mapping.
//
// Row-level failures are recovered locally: a row is dropped (and counted)
// when its region key is empty, when its timestamp fails to parse, or when
// every bucket column fails coercion. A single bucket failing coercion
// contributes zero for that bucket without dropping the row. Duplicate
// (region, timestamp) pairs are retained; multiple centers reporting the
// same day are summed later by aggregation.
//
// A mapping referencing a column absent from the header is fatal for the
// whole call and returns a MalformedMapping error before any row is read.
func Clean(header []string, rows [][]string, mapping FieldMapping) (CleanResult, error) {
	if err := mapping.Validate(header); err != nil {
		return CleanResult{}, err
	}

	regionIdx := columnIndex(header, mapping.RegionKey)
	timestampIdx := -1
	if mapping.Timestamp != "" {
		timestampIdx = columnIndex(header, mapping.Timestamp)
	}
	baselineIdx := -1
	if mapping.PopulationBaseline != "" {
		baselineIdx = columnIndex(header, mapping.PopulationBaseline)
	}
	bucketIdx := make([]int, len(mapping.AgeBuckets))
	for i, bucket := range mapping.AgeBuckets {
		bucketIdx[i] = columnIndex(header, bucket.Column)
	}

	result := CleanResult{Records: make([]Record, 0, len(rows))}

	for _, row := range rows {
		record, ok := cleanRow(row, mapping, regionIdx, timestampIdx, baselineIdx, bucketIdx)
		if !ok {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, record)
	}

	if result.Dropped > 0 {
		slog.Debug("rows dropped during cleaning",
			slog.Int("dropped", result.Dropped),
			slog.Int("kept", len(result.Records)))
	}

	return result, nil
}

// cleanRow converts one raw row, reporting ok=false when the row is rejected
func cleanRow(row []string, mapping FieldMapping, regionIdx, timestampIdx, baselineIdx int, bucketIdx []int) (Record, bool) {
	region := cell(row, regionIdx)
	if region == "" {
		return Record{}, false
	}

	record := Record{
		RegionKey: region,
		Buckets:   make(map[string]int64, len(mapping.AgeBuckets)),
	}

	if timestampIdx >= 0 {
		ts, err := time.Parse(mapping.DateFormat, cell(row, timestampIdx))
		if err != nil {
			// A dated source must carry a parseable date on every
			// row, otherwise time grouping is ill-defined
			return Record{}, false
		}
		record.Timestamp = ts
		record.HasTimestamp = true
	}

	coerced := 0
	for i, bucket := range mapping.AgeBuckets {
		count, ok := parseCount(cell(row, bucketIdx[i]))
		if ok {
			coerced++
			record.Buckets[bucket.Label] = count
		} else {
			record.Buckets[bucket.Label] = 0
		}
	}
	if coerced == 0 {
		return Record{}, false
	}

	if baselineIdx >= 0 {
		if baseline, err := strconv.ParseFloat(stripGroupSeparators(cell(row, baselineIdx)), 64); err == nil && baseline >= 0 {
			record.Baseline = baseline
			record.HasBaseline = true
		}
	}

	return record, true
}

// cell returns the trimmed value at idx, or "" when the row is short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCount coerces a raw cell to a non-negative integer count. Decimal
// values are rounded; negatives and non-numeric values fail coercion.
func parseCount(raw string) (int64, bool) {
	raw = stripGroupSeparators(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// stripGroupSeparators removes thousands separators from a numeric cell
func stripGroupSeparators(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
}
