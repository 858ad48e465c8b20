package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"enrollpulse/internal/aggregate"
	"enrollpulse/internal/dataset"
	apperrors "enrollpulse/internal/errors"
)

// resultHeaders builds the column set for an aggregation result export
func resultHeaders(bucketLabels []string) []string {
	headers := []string{"GroupKey", "Total"}
	headers = append(headers, bucketLabels...)
	return append(headers, "Expected", "Gap", "GapRatio", "EnrollmentPercentage")
}

// WriteResultsCSV serializes aggregation results to a delimited file for
// downstream reuse. Unset optional metrics stay empty; undefined ratios are
// written as NaN so they remain distinguishable from zero.
func (w *CSVWriter) WriteResultsCSV(path string, results []aggregate.Result, bucketLabels []string) error {
	if len(bucketLabels) == 0 {
		bucketLabels = collectBucketLabels(results)
	}

	if err := w.WriteSimpleCSV(path, resultHeaders(bucketLabels), resultRows(results, bucketLabels)); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to write results to %s", path), err)
	}
	return nil
}

// StreamResultsCSV writes aggregation results as CSV to an arbitrary
// writer, for HTTP downloads. No BOM is emitted.
func StreamResultsCSV(out io.Writer, results []aggregate.Result) error {
	bucketLabels := collectBucketLabels(results)

	cw := csv.NewWriter(out)
	if err := cw.Write(resultHeaders(bucketLabels)); err != nil {
		return apperrors.NewExportError("failed to stream results header", err)
	}
	for _, row := range resultRows(results, bucketLabels) {
		if err := cw.Write(row); err != nil {
			return apperrors.NewExportError("failed to stream results row", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func resultRows(results []aggregate.Result, bucketLabels []string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{r.GroupKey, strconv.FormatInt(r.Total, 10)}
		for _, label := range bucketLabels {
			row = append(row, strconv.FormatInt(r.PerBucket[label], 10))
		}
		row = append(row,
			r.Expected.CSVField(),
			r.Gap.CSVField(),
			r.GapRatio.CSVField(),
			r.EnrollmentPct.CSVField(),
		)
		rows = append(rows, row)
	}
	return rows
}

// WriteRecordsCSV serializes cleaned records back to a combined delimited
// file, sorted by date then region for stable output.
func (w *CSVWriter) WriteRecordsCSV(path string, records []dataset.Record, bucketLabels []string, dateFormat string) error {
	ordered := make([]dataset.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].HasTimestamp && ordered[j].HasTimestamp && !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].RegionKey < ordered[j].RegionKey
	})

	headers := []string{"Date", "Region"}
	headers = append(headers, bucketLabels...)
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(ordered))
	for _, record := range ordered {
		date := ""
		if record.HasTimestamp {
			date = record.Timestamp.Format(dateFormat)
		}
		row := []string{date, record.RegionKey}
		for _, label := range bucketLabels {
			row = append(row, strconv.FormatInt(record.Buckets[label], 10))
		}
		row = append(row, strconv.FormatInt(record.Total(), 10))
		rows = append(rows, row)
	}

	if err := w.WriteSimpleCSV(path, headers, rows); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to write records to %s", path), err)
	}
	return nil
}

// collectBucketLabels derives a stable label order from the results themselves
func collectBucketLabels(results []aggregate.Result) []string {
	seen := make(map[string]bool)
	for _, r := range results {
		for label := range r.PerBucket {
			seen[label] = true
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
