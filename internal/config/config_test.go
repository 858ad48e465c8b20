package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointConfigFileAway keeps a stray config.yaml in the working directory
// from leaking into tests.
func pointConfigFileAway(t *testing.T) {
	t.Helper()
	t.Setenv("ENROLL_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	pointConfigFileAway(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0.08, cfg.Analysis.ExpectedFraction)
	assert.Equal(t, "02-01-2006", cfg.Analysis.DateFormat)
	assert.Equal(t, 7, cfg.Analysis.RollingWindow)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, "data", cfg.Paths.DataDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	pointConfigFileAway(t)
	t.Setenv("ENROLL_SERVER_PORT", "9090")
	t.Setenv("ENROLL_ANALYSIS_EXPECTED_FRACTION", "0.1")
	t.Setenv("ENROLL_ANALYSIS_ROLLING_WINDOW", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.1, cfg.Analysis.ExpectedFraction)
	assert.Equal(t, 14, cfg.Analysis.RollingWindow)
}

func TestLoadFileValuesApplyWithoutEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "" +
		"server:\n" +
		"  port: 9999\n" +
		"  rate_limit:\n" +
		"    enabled: false\n" +
		"    rps: 5\n" +
		"analysis:\n" +
		"  expected_fraction: 0.2\n" +
		"paths:\n" +
		"  data_dir: /srv/enrollment\n"
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))
	t.Setenv("ENROLL_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, float64(5), cfg.Server.RateLimit.RPS)
	assert.False(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 0.2, cfg.Analysis.ExpectedFraction)
	assert.Equal(t, "/srv/enrollment", cfg.Paths.DataDir)

	// Untouched by the file, still defaulted
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Analysis.RollingWindow)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9999\n"), 0o644))
	t.Setenv("ENROLL_CONFIG_FILE", file)
	t.Setenv("ENROLL_SERVER_PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadRejectsFractionAboveOne(t *testing.T) {
	pointConfigFileAway(t)
	t.Setenv("ENROLL_ANALYSIS_EXPECTED_FRACTION", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	pointConfigFileAway(t)
	t.Setenv("ENROLL_LOGGING_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
}

func TestNewPathsResolvesRelativeDirs(t *testing.T) {
	paths, err := NewPaths(PathsConfig{DataDir: "data", ReportsDir: "reports", LogsDir: "logs"})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(wd, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "gap_analysis.csv"), paths.GapAnalysisCSV)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "enrollment_report.xlsx"), paths.ReportXLSX)
}

func TestNewPathsKeepsAbsoluteDirs(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewPaths(PathsConfig{DataDir: dir, ReportsDir: dir, LogsDir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, paths.DataDir)
}
