package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved file system layout of the application. All well
// known input and output files are addressed through it so that every binary
// agrees on where data lives.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string

	// Well-known files
	SampleDataCSV   string
	CombinedDataCSV string
	StateSummaryCSV string
	DailySummaryCSV string
	GapAnalysisCSV  string
	SummaryJSON     string
	ReportXLSX      string
}

// NewPaths builds a Paths from the configured directories, resolved against
// the current working directory when relative.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir),
		ReportsDir: resolve(cfg.ReportsDir),
		LogsDir:    resolve(cfg.LogsDir),
	}

	p.SampleDataCSV = filepath.Join(p.DataDir, "sample_data.csv")
	p.CombinedDataCSV = filepath.Join(p.ReportsDir, "combined_enrollment.csv")
	p.StateSummaryCSV = filepath.Join(p.ReportsDir, "state_summary.csv")
	p.DailySummaryCSV = filepath.Join(p.ReportsDir, "daily_summary.csv")
	p.GapAnalysisCSV = filepath.Join(p.ReportsDir, "gap_analysis.csv")
	p.SummaryJSON = filepath.Join(p.ReportsDir, "summary.json")
	p.ReportXLSX = filepath.Join(p.ReportsDir, "enrollment_report.xlsx")

	return p, nil
}

// EnsureDirectories creates all required directories if they do not exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a file in the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetDataPath returns the full path for a file in the data directory
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetLogPath returns the full path for a file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
