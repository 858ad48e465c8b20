package dataset

import "time"

// Record is one cleaned enrollment observation. Records are produced by the
// cleaning stage and consumed by aggregation; they are not retained after.
type Record struct {
	RegionKey string
	// Timestamp is valid only when HasTimestamp is set; static state
	// summary sources carry no dates
	Timestamp    time.Time
	HasTimestamp bool
	// Buckets holds the per-age-bucket counts keyed by bucket label
	Buckets map[string]int64
	// Baseline is the population figure for expected-enrollment ratios,
	// valid only when HasBaseline is set
	Baseline    float64
	HasBaseline bool
}

// Total returns the sum of all bucket counts for this record
func (r Record) Total() int64 {
	var total int64
	for _, count := range r.Buckets {
		total += count
	}
	return total
}
