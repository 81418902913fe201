package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	BoardMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centrale_board_mutation_count",
			Help: "Total number of board mutations applied",
		},
		[]string{"operation", "partition"},
	)

	FileUploadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centrale_file_upload_count",
			Help: "Total number of attachment uploads",
		},
		[]string{"status"}, // status: success, rejected, failed
	)

	CacheHitCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centrale_board_cache_count",
			Help: "Board list cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)
)

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

func RecordDBQueryDuration(operation, table string, d time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(d.Seconds())
}

func IncrementBoardMutation(operation, partition string) {
	BoardMutationCount.WithLabelValues(operation, partition).Inc()
}

func IncrementFileUpload(status string) {
	FileUploadCount.WithLabelValues(status).Inc()
}

func IncrementCacheLookup(result string) {
	CacheHitCount.WithLabelValues(result).Inc()
}
