package generator

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"enrollpulse/internal/exporter"
)

// DefaultRegions are the regions used for generated demo datasets
var DefaultRegions = []string{
	"Andhra Pradesh", "Assam", "Bihar", "Delhi", "Gujarat",
	"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Odisha",
	"Punjab", "Rajasthan", "Tamil Nadu", "Telangana", "Uttar Pradesh",
	"West Bengal",
}

// Options tunes dataset generation
type Options struct {
	Start   time.Time
	End     time.Time
	Regions []string
	// Seed makes generation reproducible
	Seed int64
	// DateFormat is the layout used for the date column
	DateFormat string
}

// Center types with their generation weights
const (
	CenterPermanent = "Permanent"
	CenterTemporary = "Temporary"

	permanentShare = 0.7
)

// Row is one generated daily observation for one region. Gender counts and
// center type are extra descriptive columns; the daily field mapping only
// reads the date, region and age buckets.
type Row struct {
	Date       time.Time
	Region     string
	Age0to5    int64
	Age5to17   int64
	Age18Up    int64
	Male       int64
	Female     int64
	CenterType string
}

// Total is the summed daily volume across age buckets
func (r Row) Total() int64 {
	return r.Age0to5 + r.Age5to17 + r.Age18Up
}

// Generate produces a deterministic synthetic enrollment dataset: one row
// per region per day, with weekday and seasonal factors so that trends and
// seasonality views have something to show.
func Generate(opts Options) []Row {
	if len(opts.Regions) == 0 {
		opts.Regions = DefaultRegions
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	// Each region gets a stable size factor, standing in for population
	regionFactor := make(map[string]float64, len(opts.Regions))
	for _, region := range opts.Regions {
		regionFactor[region] = 0.5 + rng.Float64()*1.5
	}

	var rows []Row
	for d := opts.Start; !d.After(opts.End); d = d.AddDate(0, 0, 1) {
		seasonal := seasonalFactor(d.Month())
		weekend := 1.0
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend = 0.6
		}

		for _, region := range opts.Regions {
			base := (400 + rng.Float64()*200) * regionFactor[region] * seasonal * weekend

			// Age split mirrors the observed enrollment skew towards
			// young children
			row := Row{
				Date:     d,
				Region:   region,
				Age0to5:  int64(base * 0.65),
				Age5to17: int64(base * 0.30),
				Age18Up:  int64(base * 0.05),
			}

			// Near-even gender split; female gets the rounding remainder
			maleRatio := 0.48 + rng.Float64()*0.04
			row.Male = int64(float64(row.Total()) * maleRatio)
			row.Female = row.Total() - row.Male

			row.CenterType = CenterTemporary
			if rng.Float64() < permanentShare {
				row.CenterType = CenterPermanent
			}

			rows = append(rows, row)
		}
	}

	slog.Info("generated synthetic dataset",
		slog.Int("rows", len(rows)),
		slog.String("start", opts.Start.Format("2006-01-02")),
		slog.String("end", opts.End.Format("2006-01-02")),
		slog.Int64("seed", opts.Seed))

	return rows
}

// seasonalFactor boosts winter months and damps the monsoon, matching the
// enrollment drive calendar
func seasonalFactor(month time.Month) float64 {
	switch month {
	case time.December, time.January, time.February:
		return 1.2
	case time.June, time.July, time.August:
		return 0.8
	default:
		return 1.0
	}
}

// WriteCSV writes generated rows in the daily input schema, so generated
// files feed the same mapping as real daily files.
func WriteCSV(path string, rows []Row, dateFormat string) error {
	w := exporter.NewCSVWriter()

	stream, err := w.CreateStreamWriter(path, []string{
		"date", "state", "age_0_5", "age_5_17", "age_18_greater",
		"male_enrollments", "female_enrollments", "center_type",
	})
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format(dateFormat),
			row.Region,
			strconv.FormatInt(row.Age0to5, 10),
			strconv.FormatInt(row.Age5to17, 10),
			strconv.FormatInt(row.Age18Up, 10),
			strconv.FormatInt(row.Male, 10),
			strconv.FormatInt(row.Female, 10),
			row.CenterType,
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return stream.Close()
}
