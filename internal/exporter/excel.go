package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"enrollpulse/internal/aggregate"
	apperrors "enrollpulse/internal/errors"
)

// ReportData holds everything the workbook report covers
type ReportData struct {
	ByRegion     []aggregate.Result
	ByMonth      []aggregate.Result
	Metrics      aggregate.KeyMetrics
	Insights     []aggregate.Insight
	BucketLabels []string
}

// WriteReportXLSX writes a multi-sheet Excel workbook: headline metrics,
// the per-region summary, the monthly trend, and the derived insights.
func WriteReportXLSX(path string, data ReportData) error {
	slog.Info("writing Excel report",
		slog.String("path", path),
		slog.Int("regions", len(data.ByRegion)),
		slog.Int("months", len(data.ByMonth)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeMetricsSheet(f, data.Metrics); err != nil {
		return apperrors.NewExportError("failed to write overview sheet", err)
	}
	if err := writeResultsSheet(f, "By Region", data.ByRegion, data.BucketLabels); err != nil {
		return apperrors.NewExportError("failed to write region sheet", err)
	}
	if len(data.ByMonth) > 0 {
		if err := writeResultsSheet(f, "Monthly Trend", data.ByMonth, data.BucketLabels); err != nil {
			return apperrors.NewExportError("failed to write trend sheet", err)
		}
	}
	if len(data.Insights) > 0 {
		if err := writeInsightsSheet(f, data.Insights); err != nil {
			return apperrors.NewExportError("failed to write insights sheet", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}

// writeMetricsSheet renames the default sheet to Overview and fills it
func writeMetricsSheet(f *excelize.File, metrics aggregate.KeyMetrics) error {
	const sheet = "Overview"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Enrollments", metrics.TotalEnrollments},
		{"Regions", metrics.RegionCount},
		{"Days of Data", metrics.DayCount},
	}
	if metrics.AvgDaily.Valid {
		rows = append(rows, []interface{}{"Average Daily Enrollments", metrics.AvgDaily.Value})
	}
	if metrics.GrowthRate.Valid {
		rows = append(rows, []interface{}{"Growth Rate (%)", metrics.GrowthRate.Value})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// writeResultsSheet writes one aggregation result set to a named sheet
func writeResultsSheet(f *excelize.File, sheet string, results []aggregate.Result, bucketLabels []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if len(bucketLabels) == 0 {
		bucketLabels = collectBucketLabels(results)
	}

	header := make([]interface{}, 0, len(bucketLabels)+6)
	for _, h := range resultHeaders(bucketLabels) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range results {
		row := []interface{}{r.GroupKey, r.Total}
		for _, label := range bucketLabels {
			row = append(row, r.PerBucket[label])
		}
		for _, opt := range []aggregate.OptFloat{r.Expected, r.Gap, r.GapRatio, r.EnrollmentPct} {
			if opt.Valid && !opt.IsUndefined() {
				row = append(row, opt.Value)
			} else {
				row = append(row, opt.CSVField())
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// writeInsightsSheet writes the derived insights to their own sheet
func writeInsightsSheet(f *excelize.File, insights []aggregate.Insight) error {
	const sheet = "Insights"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Label", "Insight"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, in := range insights {
		row := []interface{}{in.Label, in.Message}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
