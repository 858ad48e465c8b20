package aggregate

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// GroupBy selects the single grouping dimension for one aggregation pass.
// Multi-dimensional grouping is achieved by composing keys upstream, not by
// the aggregator branching internally.
type GroupBy int

const (
	// ByRegion groups records on their region key
	ByRegion GroupBy = iota
	// ByDay groups records on the calendar day of their timestamp
	ByDay
	// ByMonth groups records on the calendar month of their timestamp
	ByMonth
)

// String returns the string representation of the grouping dimension
func (g GroupBy) String() string {
	switch g {
	case ByRegion:
		return "region"
	case ByDay:
		return "day"
	case ByMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParseGroupBy converts a string to a GroupBy, reporting ok=false on unknown
func ParseGroupBy(s string) (GroupBy, bool) {
	switch s {
	case "region", "state":
		return ByRegion, true
	case "day", "daily":
		return ByDay, true
	case "month", "monthly":
		return ByMonth, true
	default:
		return ByRegion, false
	}
}

// OptFloat is an optional float64. Valid distinguishes "computed to zero"
// from "never computed"; a Valid NaN marks a ratio whose divisor was zero.
type OptFloat struct {
	Value float64
	Valid bool
}

// Undefined returns the explicit marker for a division by zero expected value
func Undefined() OptFloat {
	return OptFloat{Value: math.NaN(), Valid: true}
}

// Some returns a set OptFloat
func Some(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// IsUndefined reports whether the value is the undefined-ratio marker
func (o OptFloat) IsUndefined() bool {
	return o.Valid && math.IsNaN(o.Value)
}

// MarshalJSON renders unset and undefined values as null, since JSON has no
// NaN literal. CSV export keeps the two states distinguishable instead.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid || math.IsNaN(o.Value) {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// CSVField renders the value for delimited output: empty when unset, "NaN"
// when undefined.
func (o OptFloat) CSVField() string {
	if !o.Valid {
		return ""
	}
	if math.IsNaN(o.Value) {
		return "NaN"
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

// Result is one group's aggregate. Results are immutable once computed;
// ranking and filtering build new projections rather than mutating them.
type Result struct {
	// GroupKey is the region key or the formatted time bucket
	GroupKey string `json:"group_key"`
	// BucketStart is the start of the containing time bucket, valid only
	// for time groupings
	BucketStart   time.Time        `json:"bucket_start,omitempty"`
	HasBucket     bool             `json:"-"`
	Total         int64            `json:"total"`
	PerBucket     map[string]int64 `json:"per_bucket"`
	Expected      OptFloat         `json:"expected"`
	Gap           OptFloat         `json:"gap"`
	GapRatio      OptFloat         `json:"gap_ratio"`
	EnrollmentPct OptFloat         `json:"enrollment_percentage"`
}
