package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type ImportMetrics struct {
	RowsTotal     *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	AgedCustomers prometheus.Counter
	EventsDropped *prometheus.CounterVec
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_engine_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collection_engine_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collection_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Import = ImportMetrics{
		RowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_engine_import_rows_total",
				Help: "Spreadsheet rows processed, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		BatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collection_engine_import_batch_duration_seconds",
				Help:    "Histogram of import batch durations.",
				Buckets: []float64{.05, .1, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		AgedCustomers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "collection_engine_aged_customers_total",
				Help: "Customers whose debt age was advanced by the aging job.",
			},
		),
		EventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_engine_events_dropped_total",
				Help: "Domain events that could not be published.",
			},
			[]string{"routing_key"},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordImportRow(operation, outcome string) {
	Import.RowsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordImportBatch(operation string, duration time.Duration) {
	Import.BatchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordAgedCustomers(n int64) {
	Import.AgedCustomers.Add(float64(n))
}

func RecordEventDropped(routingKey string) {
	Import.EventsDropped.WithLabelValues(routingKey).Inc()
}

// Observe times a database call and records it under queryName.
func Observe(queryName string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RecordDBQuery(queryName, status, time.Since(start))
}
