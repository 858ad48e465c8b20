package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollpulse/internal/aggregate"
	"enrollpulse/internal/config"
	apperrors "enrollpulse/internal/errors"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	calls   int
	records int
	dropped int
}

func (b *recordingBroadcaster) BroadcastRefresh(recordCount, dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.records = recordCount
	b.dropped = dropped
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Analysis: config.AnalysisConfig{
			ExpectedFraction: 0.08,
			DateFormat:       "02-01-2006",
			RollingWindow:    3,
			ForecastDays:     5,
			TopN:             10,
		},
		Paths: config.PathsConfig{DataDir: t.TempDir()},
	}
}

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const dailyCSV = `date,state,age_0_5,age_5_17,age_18_greater
01-03-2024,Kerala,10,20,5
02-03-2024,Kerala,12,18,4
03-03-2024,Kerala,8,22,6
01-03-2024,Bihar,30,40,10
02-03-2024,Bihar,28,35,9
bad-date,Bihar,1,1,1
`

func TestDatasetServiceLoadAndStatus(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)

	hub := &recordingBroadcaster{}
	svc := NewDatasetService(cfg, nil, hub)

	status, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Loaded)
	assert.Equal(t, 5, status.RecordCount)
	assert.Equal(t, 1, status.DroppedRows)
	assert.Len(t, status.Sources, 1)

	assert.Equal(t, 1, hub.calls)
	assert.Equal(t, 5, hub.records)
	assert.Equal(t, 1, hub.dropped)
}

func TestDatasetServiceLoadEmptyDirectory(t *testing.T) {
	cfg := testConfig(t)
	svc := NewDatasetService(cfg, nil, nil)

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInputNotFound))
}

func TestDatasetServiceReadsBeforeLoadFail(t *testing.T) {
	svc := NewDatasetService(testConfig(t), nil, nil)

	_, err := svc.Summary(context.Background(), aggregate.ByRegion, FilterOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInputNotFound))
}

func TestDatasetServiceSummaryByRegion(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)
	svc := NewDatasetService(cfg, nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	results, err := svc.Summary(context.Background(), aggregate.ByRegion, FilterOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by group key
	assert.Equal(t, "Bihar", results[0].GroupKey)
	assert.Equal(t, int64(152), results[0].Total)
	assert.Equal(t, "Kerala", results[1].GroupKey)
	assert.Equal(t, int64(105), results[1].Total)
}

func TestDatasetServiceFilterByRegionAndDate(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)
	svc := NewDatasetService(cfg, nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	records, err := svc.Records(FilterOptions{Regions: []string{"kerala"}, From: &from})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "Kerala", r.RegionKey)
		assert.False(t, r.Timestamp.Before(from))
	}
}

func TestDatasetServiceTop(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)
	svc := NewDatasetService(cfg, nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	top, err := svc.Top(context.Background(), aggregate.RankByTotal, 1, false, FilterOptions{})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Bihar", top[0].GroupKey)
}

func TestDatasetServiceTrends(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)
	svc := NewDatasetService(cfg, nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	report, err := svc.Trends(context.Background(), aggregate.BucketDay, FilterOptions{})
	require.NoError(t, err)

	require.Len(t, report.Points, 3)
	assert.Equal(t, float64(115), report.Points[0].Value)
	assert.Equal(t, float64(106), report.Points[1].Value)
	assert.Equal(t, float64(36), report.Points[2].Value)
	require.Len(t, report.Rolling, 3)
	require.NotNil(t, report.Forecast)
	assert.Len(t, report.Forecast.Points, cfg.Analysis.ForecastDays)
}

func TestDatasetServiceRegions(t *testing.T) {
	cfg := testConfig(t)
	writeDataFile(t, cfg.Paths.DataDir, "march.csv", dailyCSV)
	svc := NewDatasetService(cfg, nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	regions, err := svc.Regions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bihar", "Kerala"}, regions)
}

func TestHealthServiceDegradedWithoutDataset(t *testing.T) {
	svc := NewDatasetService(testConfig(t), nil, nil)
	health := NewHealthService(svc, "test", nil)

	status := health.Check()
	assert.Equal(t, "degraded", status.Status)
	assert.False(t, status.Dataset.Loaded)
}
