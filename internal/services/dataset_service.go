package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"enrollpulse/internal/aggregate"
	"enrollpulse/internal/config"
	"enrollpulse/internal/dataset"
	apperrors "enrollpulse/internal/errors"
	"enrollpulse/internal/metrics"
	"enrollpulse/internal/websocket"
)

// RefreshBroadcaster notifies interested parties that the dataset changed.
// The websocket hub satisfies it; tests can pass nil.
type RefreshBroadcaster interface {
	BroadcastRefresh(recordCount, dropped int)
}

// DatasetService owns the cleaned in-memory dataset and serves read views
// of it. All reads are safe for concurrent use; Reload swaps the dataset
// atomically under the write lock.
type DatasetService struct {
	config  *config.Config
	logger  *slog.Logger
	hub     RefreshBroadcaster
	mapping dataset.FieldMapping

	mu       sync.RWMutex
	records  []dataset.Record
	dropped  int
	sources  []string
	loadedAt time.Time
}

// DatasetStatus describes the currently loaded dataset
type DatasetStatus struct {
	Loaded      bool      `json:"loaded"`
	RecordCount int       `json:"record_count"`
	DroppedRows int       `json:"dropped_rows"`
	Sources     []string  `json:"sources"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

// FilterOptions narrows a read view of the dataset. Zero values mean no
// constraint on that dimension. Region matching is case-insensitive.
type FilterOptions struct {
	From    *time.Time
	To      *time.Time
	Regions []string
}

// TrendReport bundles the time series views of the dataset
type TrendReport struct {
	Bucket   string                `json:"bucket"`
	Points   []aggregate.TimePoint `json:"points"`
	Rolling  []aggregate.TimePoint `json:"rolling"`
	Forecast *aggregate.Forecast   `json:"forecast,omitempty"`
}

// NewDatasetService creates a dataset service for daily enrollment files
func NewDatasetService(cfg *config.Config, logger *slog.Logger, hub RefreshBroadcaster) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		config:  cfg,
		logger:  logger.With(slog.String("component", "dataset_service")),
		hub:     hub,
		mapping: dataset.DefaultDailyMapping(cfg.Analysis.DateFormat),
	}
}

// WithMapping overrides the field mapping used on the next load
func (s *DatasetService) WithMapping(mapping dataset.FieldMapping) *DatasetService {
	s.mapping = mapping
	return s
}

// Load discovers CSV files under the configured data directory, cleans them
// and replaces the in-memory dataset.
func (s *DatasetService) Load(ctx context.Context) (DatasetStatus, error) {
	files, err := dataset.DiscoverCSVFiles(s.config.Paths.DataDir, "*.csv")
	if err != nil {
		return DatasetStatus{}, err
	}
	if len(files) == 0 {
		return DatasetStatus{}, apperrors.NewInputNotFound(s.config.Paths.DataDir, nil)
	}

	result, err := dataset.LoadAndClean(ctx, files, s.mapping)
	if err != nil {
		return DatasetStatus{}, err
	}

	metrics.ObserveCleaning(len(result.Records), result.Dropped)

	s.mu.Lock()
	s.records = result.Records
	s.dropped = result.Dropped
	s.sources = files
	s.loadedAt = time.Now()
	status := s.statusLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("files", len(files)),
		slog.Int("records", status.RecordCount),
		slog.Int("dropped", status.DroppedRows))

	if s.hub != nil {
		s.hub.BroadcastRefresh(status.RecordCount, status.DroppedRows)
	}
	return status, nil
}

// Reload re-reads the data directory, picking up new and changed files
func (s *DatasetService) Reload(ctx context.Context) (DatasetStatus, error) {
	metrics.ObserveReload()
	return s.Load(ctx)
}

// Status reports on the currently loaded dataset
func (s *DatasetService) Status() DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *DatasetService) statusLocked() DatasetStatus {
	return DatasetStatus{
		Loaded:      len(s.records) > 0,
		RecordCount: len(s.records),
		DroppedRows: s.dropped,
		Sources:     append([]string(nil), s.sources...),
		LoadedAt:    s.loadedAt,
	}
}

// Records returns a filtered copy of the loaded records
func (s *DatasetService) Records(filter FilterOptions) ([]dataset.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return nil, apperrors.New(apperrors.KindInputNotFound, "no dataset loaded", nil)
	}
	return filterRecords(s.records, filter), nil
}

// Summary aggregates the filtered dataset by the requested grouping
func (s *DatasetService) Summary(ctx context.Context, groupBy aggregate.GroupBy, filter FilterOptions) ([]aggregate.Result, error) {
	records, err := s.Records(filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := aggregate.Aggregate(records, groupBy, aggregate.Options{
		ExpectedFraction: s.config.Analysis.ExpectedFraction,
		ComputeExpected:  groupBy == aggregate.ByRegion,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveAggregation(groupBy.String(), time.Since(start))
	return results, nil
}

// Top ranks the per-region aggregation on the requested field
func (s *DatasetService) Top(ctx context.Context, byField string, n int, ascending bool, filter FilterOptions) ([]aggregate.Result, error) {
	results, err := s.Summary(ctx, aggregate.ByRegion, filter)
	if err != nil {
		return nil, err
	}
	return aggregate.Rank(results, byField, n, ascending)
}

// Trends produces the bucketed time series with a rolling mean overlay and,
// when the series is long enough, a naive forecast.
func (s *DatasetService) Trends(ctx context.Context, bucket aggregate.Bucket, filter FilterOptions) (TrendReport, error) {
	records, err := s.Records(filter)
	if err != nil {
		return TrendReport{}, err
	}

	groupBy := aggregate.ByDay
	if bucket == aggregate.BucketMonth {
		groupBy = aggregate.ByMonth
	}

	start := time.Now()
	results, err := aggregate.Aggregate(records, groupBy, aggregate.Options{})
	if err != nil {
		return TrendReport{}, err
	}
	metrics.ObserveAggregation(groupBy.String(), time.Since(start))

	points, err := aggregate.Series(results)
	if err != nil {
		return TrendReport{}, err
	}
	points = aggregate.FillGaps(points, bucket)

	window := s.config.Analysis.RollingWindow
	if window > len(points) {
		window = len(points)
	}
	rolling, err := aggregate.RollingMeanSeries(points, window)
	if err != nil {
		return TrendReport{}, err
	}

	report := TrendReport{Bucket: bucket.String(), Points: points, Rolling: rolling}

	lookback := s.config.Analysis.RollingWindow
	if bucket == aggregate.BucketDay && len(points) >= lookback {
		forecast, err := aggregate.NaiveForecast(points, bucket, lookback, s.config.Analysis.ForecastDays)
		if err == nil {
			report.Forecast = &forecast
		}
	}
	return report, nil
}

// KeyMetrics computes the headline numbers over the filtered dataset
func (s *DatasetService) KeyMetrics(filter FilterOptions) (aggregate.KeyMetrics, error) {
	records, err := s.Records(filter)
	if err != nil {
		return aggregate.KeyMetrics{}, err
	}
	return aggregate.Metrics(records, s.config.Analysis.RollingWindow), nil
}

// Insights derives the human-readable findings over the filtered dataset
func (s *DatasetService) Insights(filter FilterOptions) ([]aggregate.Insight, error) {
	records, err := s.Records(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.Insights(records, s.config.Analysis.RollingWindow), nil
}

// Seasonal returns the per-calendar-month volume profile
func (s *DatasetService) Seasonal(filter FilterOptions) ([]aggregate.SeasonalPoint, error) {
	records, err := s.Records(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.SeasonalProfile(records), nil
}

// Regions lists the distinct region keys in the loaded dataset, sorted
func (s *DatasetService) Regions() ([]string, error) {
	records, err := s.Records(FilterOptions{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var regions []string
	for _, r := range records {
		if !seen[r.RegionKey] {
			seen[r.RegionKey] = true
			regions = append(regions, r.RegionKey)
		}
	}
	sort.Strings(regions)
	return regions, nil
}

func filterRecords(records []dataset.Record, filter FilterOptions) []dataset.Record {
	regionSet := make(map[string]bool, len(filter.Regions))
	for _, r := range filter.Regions {
		regionSet[strings.ToLower(strings.TrimSpace(r))] = true
	}

	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if len(regionSet) > 0 && !regionSet[strings.ToLower(r.RegionKey)] {
			continue
		}
		if filter.From != nil && (!r.HasTimestamp || r.Timestamp.Before(*filter.From)) {
			continue
		}
		if filter.To != nil && (!r.HasTimestamp || r.Timestamp.After(*filter.To)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// interface check
var _ RefreshBroadcaster = (*websocket.Hub)(nil)
