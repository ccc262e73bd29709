// Package metrics exposes Prometheus collectors for the data API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	rowsServedTotal            *prometheus.CounterVec
	storageQueryDuration       *prometheus.HistogramVec
	storageErrorsTotal         *prometheus.CounterVec
	csvColumnsDroppedTotal     *prometheus.CounterVec
	snapshotsTotal             *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		rowsServedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsapi_rows_served_total",
				Help: "Total number of rows returned, labeled by dataset.",
			},
			[]string{"dataset"},
		)

		storageQueryDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobsapi_storage_query_duration_seconds",
				Help:    "Histogram of storage round-trip latencies, labeled by operation.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"operation"},
		)

		storageErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsapi_storage_errors_total",
				Help: "Total number of failed storage round-trips, labeled by operation.",
			},
			[]string{"operation"},
		)

		csvColumnsDroppedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsapi_csv_columns_dropped_total",
				Help: "Columns left out of a CSV header because the first row lacked them.",
			},
			[]string{"dataset"},
		)

		snapshotsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsapi_snapshots_total",
				Help: "Dataset snapshots written to the blob sink, labeled by dataset and status.",
			},
			[]string{"dataset", "status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RowsServed records the number of rows a dataset returned.
func RowsServed(dataset string, rows int) {
	Init()
	if rows > 0 {
		rowsServedTotal.WithLabelValues(dataset).Add(float64(rows))
	}
}

// ObserveQuery records a storage round-trip.
func ObserveQuery(operation string, duration time.Duration, err error) {
	Init()
	storageQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		storageErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// ColumnsDropped records CSV columns lost to the first-row header rule.
func ColumnsDropped(dataset string, n int) {
	Init()
	if n > 0 {
		csvColumnsDroppedTotal.WithLabelValues(dataset).Add(float64(n))
	}
}

// ObserveSnapshot counts a snapshot attempt.
func ObserveSnapshot(dataset, status string) {
	Init()
	snapshotsTotal.WithLabelValues(dataset, status).Inc()
}
