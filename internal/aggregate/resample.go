package aggregate

import (
	"fmt"
	"time"

	"enrollpulse/internal/dataset"
)

// Bucket is a calendar period used to group time-series records
type Bucket int

const (
	// BucketDay truncates timestamps to midnight of their day
	BucketDay Bucket = iota
	// BucketMonth truncates timestamps to the first of their month
	BucketMonth
)

// String returns the string representation of the bucket
func (b Bucket) String() string {
	switch b {
	case BucketDay:
		return "day"
	case BucketMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParseBucket converts a string to a Bucket, reporting ok=false on unknown
func ParseBucket(s string) (Bucket, bool) {
	switch s {
	case "day", "daily":
		return BucketDay, true
	case "month", "monthly":
		return BucketMonth, true
	default:
		return BucketDay, false
	}
}

// BucketStart maps a timestamp to the start of its containing bucket
func BucketStart(ts time.Time, bucket Bucket) time.Time {
	switch bucket {
	case BucketMonth:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	default:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	}
}

// Next returns the start of the bucket following ts
func (b Bucket) Next(ts time.Time) time.Time {
	switch b {
	case BucketMonth:
		return ts.AddDate(0, 1, 0)
	default:
		return ts.AddDate(0, 0, 1)
	}
}

// Resample maps every record's timestamp to the start of its containing
// bucket, so records then aggregate by that synthetic timestamp. Gaps between
// observed buckets are NOT filled here; the aggregator never invents data
// points. Callers needing a dense axis apply FillGaps to the aggregated
// series themselves.
func Resample(records []dataset.Record, bucket Bucket) ([]dataset.Record, error) {
	resampled := make([]dataset.Record, len(records))
	for i, record := range records {
		if !record.HasTimestamp {
			return nil, fmt.Errorf("cannot resample undated record for region %q", record.RegionKey)
		}
		record.Timestamp = BucketStart(record.Timestamp, bucket)
		resampled[i] = record
	}
	return resampled, nil
}
