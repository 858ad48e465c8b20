package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"enrollpulse/internal/dataset"
)

// Options tunes one aggregation pass
type Options struct {
	// ExpectedFraction is the assumed enrollment-eligible share of the
	// population baseline. Expected/gap metrics are computed only when
	// ComputeExpected is set and a group carries at least one baseline.
	ExpectedFraction float64
	ComputeExpected  bool
}

const (
	dayKeyFormat   = "2006-01-02"
	monthKeyFormat = "2006-01"
)

// Aggregate reduces records to one Result per distinct group key.
//
// Totals are accumulated in integer arithmetic; no floating point touches
// Total or PerBucket. When expected metrics are requested, Expected is the
// sum of baseline*fraction over the group's baseline-carrying records; a
// group with no baseline leaves all four derived metrics unset. A zero
// Expected yields the explicit undefined marker for the two ratios.
//
// Output is sorted by group key, so repeated runs over the same input
// produce identical result sets.
func Aggregate(records []dataset.Record, groupBy GroupBy, opts Options) ([]Result, error) {
	if groupBy != ByRegion {
		for _, r := range records {
			if !r.HasTimestamp {
				return nil, fmt.Errorf("cannot group by %s: dataset has undated records", groupBy)
			}
		}
	}

	type accumulator struct {
		result    Result
		expected  float64
		baselines int
	}

	groups := make(map[string]*accumulator)

	for _, record := range records {
		key, bucketStart, hasBucket := groupKey(record, groupBy)

		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{result: Result{
				GroupKey:    key,
				BucketStart: bucketStart,
				HasBucket:   hasBucket,
				PerBucket:   make(map[string]int64),
			}}
			groups[key] = acc
		}

		for label, count := range record.Buckets {
			acc.result.PerBucket[label] += count
			acc.result.Total += count
		}

		if opts.ComputeExpected && record.HasBaseline {
			acc.expected += record.Baseline * opts.ExpectedFraction
			acc.baselines++
		}
	}

	results := make([]Result, 0, len(groups))
	for _, acc := range groups {
		if opts.ComputeExpected && acc.baselines > 0 {
			acc.result.Expected = Some(acc.expected)
			gap := acc.expected - float64(acc.result.Total)
			acc.result.Gap = Some(gap)
			if acc.expected == 0 {
				acc.result.GapRatio = Undefined()
				acc.result.EnrollmentPct = Undefined()
			} else {
				acc.result.GapRatio = Some(round(gap/acc.expected, 2))
				acc.result.EnrollmentPct = Some(round(float64(acc.result.Total)/acc.expected*100, 1))
			}
		}
		results = append(results, acc.result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].GroupKey < results[j].GroupKey
	})

	return results, nil
}

// groupKey derives the grouping key for one record
func groupKey(record dataset.Record, groupBy GroupBy) (string, time.Time, bool) {
	switch groupBy {
	case ByDay:
		start := BucketStart(record.Timestamp, BucketDay)
		return start.Format(dayKeyFormat), start, true
	case ByMonth:
		start := BucketStart(record.Timestamp, BucketMonth)
		return start.Format(monthKeyFormat), start, true
	default:
		return record.RegionKey, time.Time{}, false
	}
}

// round rounds to the given number of decimal places
func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
