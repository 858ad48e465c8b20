package aggregate

import (
	"fmt"
	"sort"
	"time"
)

// TimePoint is one observation on a time axis
type TimePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series extracts an ordered (time, total) series from time-grouped results
func Series(results []Result) ([]TimePoint, error) {
	points := make([]TimePoint, 0, len(results))
	for _, r := range results {
		if !r.HasBucket {
			return nil, fmt.Errorf("result %q has no time bucket", r.GroupKey)
		}
		points = append(points, TimePoint{Time: r.BucketStart, Value: float64(r.Total)})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points, nil
}

// FillGaps inserts zero-valued points for every bucket missing between the
// first and last observation. Zero-filling is an explicit presentation-layer
// step: rolling computations need a dense axis, and this is where the density
// is decided, not inside the aggregator.
func FillGaps(points []TimePoint, bucket Bucket) []TimePoint {
	if len(points) < 2 {
		return points
	}

	ordered := make([]TimePoint, len(points))
	copy(ordered, points)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	filled := make([]TimePoint, 0, len(ordered))
	filled = append(filled, ordered[0])
	for _, p := range ordered[1:] {
		for next := bucket.Next(filled[len(filled)-1].Time); next.Before(p.Time); next = bucket.Next(next) {
			filled = append(filled, TimePoint{Time: next, Value: 0})
		}
		filled = append(filled, p)
	}
	return filled
}

// RollingMean computes a trailing moving average with minimum-periods-1
// semantics: each output point is the mean of up to window preceding values,
// fewer at the start. The input must already be gap-filled and time-ordered;
// this function neither sorts nor fills.
func RollingMean(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be at least 1, got %d", window)
	}

	means := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		means[i] = sum / float64(n)
	}
	return means, nil
}

// RollingMeanSeries applies RollingMean to a time series, keeping the axis
func RollingMeanSeries(points []TimePoint, window int) ([]TimePoint, error) {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	means, err := RollingMean(values, window)
	if err != nil {
		return nil, err
	}
	out := make([]TimePoint, len(points))
	for i, p := range points {
		out[i] = TimePoint{Time: p.Time, Value: means[i]}
	}
	return out, nil
}
