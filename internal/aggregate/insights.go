package aggregate

import (
	"fmt"
	"sort"
	"time"

	"enrollpulse/internal/dataset"
)

// KeyMetrics are the headline numbers of a dataset
type KeyMetrics struct {
	TotalEnrollments int64    `json:"total_enrollments"`
	AvgDaily         OptFloat `json:"avg_daily"`
	RegionCount      int      `json:"region_count"`
	DayCount         int      `json:"day_count"`
	// GrowthRate is the percentage change of total volume between the
	// last observed bucket and the bucket growthWindow days earlier
	GrowthRate OptFloat `json:"growth_rate"`
}

// Metrics computes the headline numbers over a record set. Time-derived
// metrics stay unset for undated datasets.
func Metrics(records []dataset.Record, growthWindow int) KeyMetrics {
	m := KeyMetrics{}

	regions := make(map[string]bool)
	daily := make(map[time.Time]int64)

	for _, r := range records {
		m.TotalEnrollments += r.Total()
		regions[r.RegionKey] = true
		if r.HasTimestamp {
			daily[BucketStart(r.Timestamp, BucketDay)] += r.Total()
		}
	}
	m.RegionCount = len(regions)
	m.DayCount = len(daily)

	if m.DayCount > 0 {
		m.AvgDaily = Some(float64(m.TotalEnrollments) / float64(m.DayCount))
	}

	if m.DayCount > 1 && growthWindow > 0 {
		days := make([]time.Time, 0, len(daily))
		for day := range daily {
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		last := days[len(days)-1]
		ref := last.AddDate(0, 0, -growthWindow)
		// Walk back to the nearest observed day at or before the reference
		for i := len(days) - 1; i >= 0; i-- {
			if !days[i].After(ref) {
				if base := daily[days[i]]; base > 0 {
					growth := (float64(daily[last])/float64(base) - 1) * 100
					m.GrowthRate = Some(round(growth, 1))
				}
				break
			}
		}
	}

	return m
}

// SeasonalPoint is the average daily total for one calendar month
type SeasonalPoint struct {
	Month     time.Month `json:"month"`
	MonthName string     `json:"month_name"`
	AvgDaily  float64    `json:"avg_daily"`
}

// SeasonalProfile averages daily totals by calendar month across years,
// exposing recurring enrollment seasonality.
func SeasonalProfile(records []dataset.Record) []SeasonalPoint {
	daily := make(map[time.Time]int64)
	for _, r := range records {
		if r.HasTimestamp {
			daily[BucketStart(r.Timestamp, BucketDay)] += r.Total()
		}
	}

	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for day, total := range daily {
		sums[day.Month()] += float64(total)
		counts[day.Month()]++
	}

	profile := make([]SeasonalPoint, 0, len(sums))
	for month := time.January; month <= time.December; month++ {
		if counts[month] == 0 {
			continue
		}
		profile = append(profile, SeasonalPoint{
			Month:     month,
			MonthName: month.String(),
			AvgDaily:  round(sums[month]/float64(counts[month]), 1),
		})
	}
	return profile
}

// Insight is one human-readable observation about the dataset
type Insight struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Insights derives the headline observations the dashboard surfaces
func Insights(records []dataset.Record, growthWindow int) []Insight {
	var insights []Insight

	metrics := Metrics(records, growthWindow)

	byRegion, err := Aggregate(records, ByRegion, Options{})
	if err == nil && len(byRegion) > 0 {
		top, rankErr := Rank(byRegion, RankByTotal, 1, false)
		if rankErr == nil && len(top) > 0 {
			insights = append(insights, Insight{
				Label:   "top_region",
				Message: fmt.Sprintf("Top performing region: %s with %d enrollments", top[0].GroupKey, top[0].Total),
			})
		}
	}

	if peak, ok := peakMonth(records); ok {
		insights = append(insights, Insight{
			Label:   "peak_month",
			Message: fmt.Sprintf("Peak enrollment month: %s", peak),
		})
	}

	if metrics.AvgDaily.Valid {
		insights = append(insights, Insight{
			Label:   "avg_daily",
			Message: fmt.Sprintf("Average daily enrollments: %.0f across all regions", metrics.AvgDaily.Value),
		})
	}

	if shares := bucketShares(records); len(shares) > 0 {
		insights = append(insights, shares...)
	}

	return insights
}

// peakMonth finds the calendar month with the highest total volume
func peakMonth(records []dataset.Record) (string, bool) {
	monthly := make(map[time.Time]int64)
	for _, r := range records {
		if r.HasTimestamp {
			monthly[BucketStart(r.Timestamp, BucketMonth)] += r.Total()
		}
	}
	if len(monthly) == 0 {
		return "", false
	}

	var peak time.Time
	var max int64 = -1
	for month, total := range monthly {
		if total > max || (total == max && month.Before(peak)) {
			peak, max = month, total
		}
	}
	return peak.Format("January 2006"), true
}

// bucketShares reports each age bucket's share of total volume
func bucketShares(records []dataset.Record) []Insight {
	totals := make(map[string]int64)
	var grand int64
	for _, r := range records {
		for label, count := range r.Buckets {
			totals[label] += count
			grand += count
		}
	}
	if grand == 0 {
		return nil
	}

	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	insights := make([]Insight, 0, len(labels))
	for _, label := range labels {
		insights = append(insights, Insight{
			Label: "age_share",
			Message: fmt.Sprintf("Age bucket %s: %.1f%% of enrollments",
				label, float64(totals[label])/float64(grand)*100),
		})
	}
	return insights
}
