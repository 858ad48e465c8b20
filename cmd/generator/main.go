// Command generator writes a synthetic daily enrollment CSV for development
// and demos. Output is deterministic for a given seed.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"enrollpulse/internal/config"
	"enrollpulse/internal/generator"
	"enrollpulse/internal/infrastructure"
)

func main() {
	startArg := flag.String("start", "", "first day to generate, YYYY-MM-DD (default 90 days ago)")
	endArg := flag.String("end", "", "last day to generate, YYYY-MM-DD (default today)")
	out := flag.String("out", "", "output CSV path (defaults to sample_data.csv in the data dir)")
	seed := flag.Int64("seed", 42, "random seed")
	regionsArg := flag.String("regions", "", "comma-separated region names (default built-in state list)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -90)
	if *startArg != "" {
		if start, err = time.Parse("2006-01-02", *startArg); err != nil {
			logger.Error("Invalid -start date", "error", err)
			os.Exit(1)
		}
	}
	if *endArg != "" {
		if end, err = time.Parse("2006-01-02", *endArg); err != nil {
			logger.Error("Invalid -end date", "error", err)
			os.Exit(1)
		}
	}
	if end.Before(start) {
		logger.Error("End date precedes start date")
		os.Exit(1)
	}

	regions := generator.DefaultRegions
	if *regionsArg != "" {
		regions = nil
		for _, r := range strings.Split(*regionsArg, ",") {
			if r = strings.TrimSpace(r); r != "" {
				regions = append(regions, r)
			}
		}
	}

	path := *out
	if path == "" {
		paths, err := config.NewPaths(cfg.Paths)
		if err != nil {
			logger.Error("Failed to resolve paths", "error", err)
			os.Exit(1)
		}
		if err := paths.EnsureDirectories(); err != nil {
			logger.Error("Failed to create directories", "error", err)
			os.Exit(1)
		}
		path = paths.SampleDataCSV
	}

	rows := generator.Generate(generator.Options{
		Start:      start,
		End:        end,
		Regions:    regions,
		Seed:       *seed,
		DateFormat: cfg.Analysis.DateFormat,
	})
	if err := generator.WriteCSV(path, rows, cfg.Analysis.DateFormat); err != nil {
		logger.Error("Failed to write sample data", "error", err)
		os.Exit(1)
	}

	logger.Info("Sample data generated",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("regions", len(regions)),
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")))
}
