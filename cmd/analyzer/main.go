// Command analyzer runs the full enrollment analysis pipeline over a
// directory of daily CSV files: clean, aggregate, gap analysis against a
// population file when one is present, then CSV/JSON/XLSX reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"enrollpulse/internal/aggregate"
	"enrollpulse/internal/config"
	"enrollpulse/internal/dataset"
	"enrollpulse/internal/exporter"
	"enrollpulse/internal/infrastructure"
)

func main() {
	dataDir := flag.String("data", "", "input directory of daily CSV files (defaults to configured data dir)")
	populationFile := flag.String("population", "", "optional state summary CSV carrying population baselines")
	outDir := flag.String("out", "", "output directory for reports (defaults to configured reports dir)")
	flag.Parse()

	// Missing .env is fine, environment variables still apply
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.ReportsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	if err := run(context.Background(), cfg, logger, *populationFile); err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, populationFile string) error {
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	files, err := dataset.DiscoverCSVFiles(paths.DataDir, "*.csv")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files found in %s", paths.DataDir)
	}
	logger.Info("Discovered input files", slog.Int("count", len(files)))

	mapping := dataset.DefaultDailyMapping(cfg.Analysis.DateFormat)
	cleaned, err := dataset.LoadAndClean(ctx, files, mapping)
	if err != nil {
		return err
	}
	logger.Info("Dataset cleaned",
		slog.Int("records", len(cleaned.Records)),
		slog.Int("dropped", cleaned.Dropped))

	writer := exporter.NewCSVWriter()
	labels := mapping.Labels()

	if err := writer.WriteRecordsCSV(paths.CombinedDataCSV, cleaned.Records, labels, cfg.Analysis.DateFormat); err != nil {
		return err
	}

	byRegion, err := aggregate.Aggregate(cleaned.Records, aggregate.ByRegion, aggregate.Options{})
	if err != nil {
		return err
	}
	if err := writer.WriteResultsCSV(paths.StateSummaryCSV, byRegion, labels); err != nil {
		return err
	}

	byDay, err := aggregate.Aggregate(cleaned.Records, aggregate.ByDay, aggregate.Options{})
	if err != nil {
		return err
	}
	if err := writer.WriteResultsCSV(paths.DailySummaryCSV, byDay, nil); err != nil {
		return err
	}

	byMonth, err := aggregate.Aggregate(cleaned.Records, aggregate.ByMonth, aggregate.Options{})
	if err != nil {
		return err
	}

	if populationFile != "" {
		if err := writeGapAnalysis(ctx, cfg, paths, writer, populationFile); err != nil {
			return err
		}
		logger.Info("Gap analysis written", slog.String("path", paths.GapAnalysisCSV))
	}

	metrics := aggregate.Metrics(cleaned.Records, cfg.Analysis.RollingWindow)
	insights := aggregate.Insights(cleaned.Records, cfg.Analysis.RollingWindow)

	if err := exporter.WriteSummaryJSON(paths.SummaryJSON, byRegion, metrics); err != nil {
		return err
	}
	if err := exporter.WriteReportXLSX(paths.ReportXLSX, exporter.ReportData{
		ByRegion:     byRegion,
		ByMonth:      byMonth,
		Metrics:      metrics,
		Insights:     insights,
		BucketLabels: labels,
	}); err != nil {
		return err
	}

	logger.Info("Analysis complete",
		slog.String("reports_dir", paths.ReportsDir),
		slog.Int64("total_enrollments", metrics.TotalEnrollments),
		slog.Int("regions", metrics.RegionCount))
	return nil
}

// writeGapAnalysis aggregates a region-level file that carries population
// baselines and writes the expected-vs-actual comparison.
func writeGapAnalysis(ctx context.Context, cfg *config.Config, paths *config.Paths, writer *exporter.CSVWriter, populationFile string) error {
	cleaned, err := dataset.LoadAndClean(ctx, []string{populationFile}, dataset.DefaultStateMapping())
	if err != nil {
		return err
	}

	results, err := aggregate.Aggregate(cleaned.Records, aggregate.ByRegion, aggregate.Options{
		ExpectedFraction: cfg.Analysis.ExpectedFraction,
		ComputeExpected:  true,
	})
	if err != nil {
		return err
	}
	return writer.WriteResultsCSV(paths.GapAnalysisCSV, results, nil)
}
