// Package metrics exposes the Prometheus instrumentation of the pipeline:
// row-level cleaning outcomes, aggregation latency, and dataset reloads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rowsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "enrollpulse",
		Name:      "rows_cleaned_total",
		Help:      "Number of rows that passed the cleaning stage.",
	})

	rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "enrollpulse",
		Name:      "rows_dropped_total",
		Help:      "Number of rows rejected by the cleaning stage.",
	})

	aggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "enrollpulse",
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of aggregation passes by grouping dimension.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"group_by"})

	datasetReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "enrollpulse",
		Name:      "dataset_reloads_total",
		Help:      "Number of times the in-memory dataset was reloaded.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enrollpulse",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "status"})
)

// ObserveCleaning records the outcome of one cleaning pass
func ObserveCleaning(kept, dropped int) {
	rowsCleaned.Add(float64(kept))
	rowsDropped.Add(float64(dropped))
}

// ObserveAggregation records the duration of one aggregation pass
func ObserveAggregation(groupBy string, elapsed time.Duration) {
	aggregationDuration.WithLabelValues(groupBy).Observe(elapsed.Seconds())
}

// ObserveReload records one dataset reload
func ObserveReload() {
	datasetReloads.Inc()
}

// ObserveRequest records one served HTTP request
func ObserveRequest(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// Handler returns the Prometheus scrape endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}
