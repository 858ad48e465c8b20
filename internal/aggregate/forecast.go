package aggregate

import (
	"fmt"
)

// Forecast is a naive flat projection of recent daily volume: the mean of
// the trailing lookback window carried forward, with a fixed ±10% band.
// This is a trend indicator, not a statistical model.
type Forecast struct {
	Points []TimePoint `json:"points"`
	Lower  float64     `json:"lower"`
	Upper  float64     `json:"upper"`
}

// NaiveForecast projects horizon buckets past the end of a dense, ordered
// series. The series must have at least lookback points.
func NaiveForecast(points []TimePoint, bucket Bucket, lookback, horizon int) (Forecast, error) {
	if lookback < 1 || horizon < 1 {
		return Forecast{}, fmt.Errorf("lookback and horizon must be positive")
	}
	if len(points) < lookback {
		return Forecast{}, fmt.Errorf("need at least %d points for forecasting, have %d", lookback, len(points))
	}

	var sum float64
	for _, p := range points[len(points)-lookback:] {
		sum += p.Value
	}
	mean := sum / float64(lookback)

	projected := make([]TimePoint, horizon)
	next := points[len(points)-1].Time
	for i := range projected {
		next = bucket.Next(next)
		projected[i] = TimePoint{Time: next, Value: mean}
	}

	return Forecast{
		Points: projected,
		Lower:  mean * 0.9,
		Upper:  mean * 1.1,
	}, nil
}
