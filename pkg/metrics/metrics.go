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

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)

	TaskOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_operation_count",
			Help: "Total number of task operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, error
	)

	AuthFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failure_count",
			Help: "Total number of rejected credentials",
		},
		[]string{"reason"},
	)

	CacheHitCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_cache_hit_count",
			Help: "Entity cache lookups by result",
		},
		[]string{"entity", "result"}, // result: hit, miss
	)

	OutboxPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_published_count",
			Help: "Outbox events published by outcome",
		},
		[]string{"routing_key", "outcome"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementSlowQuery(sql string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

func IncrementTaskOperation(operation, outcome string) {
	TaskOperationCount.WithLabelValues(operation, outcome).Inc()
}

func IncrementAuthFailure(reason string) {
	AuthFailureCount.WithLabelValues(reason).Inc()
}

func IncrementCacheLookup(entity, result string) {
	CacheHitCount.WithLabelValues(entity, result).Inc()
}

func IncrementOutboxPublished(routingKey, outcome string) {
	OutboxPublishedCount.WithLabelValues(routingKey, outcome).Inc()
}
