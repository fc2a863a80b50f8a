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
		[]string{"query"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	BackfillDaysProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habit_backfill_days_processed_total",
			Help: "Total number of calendar days reconciled by the backfill pass",
		},
	)

	PenaltiesCharged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_penalties_charged_total",
			Help: "Total number of penalty transactions created",
		},
		[]string{"source"}, // source: mark, backfill
	)

	TransactionsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_confirmed_total",
			Help: "Total number of transactions confirmed",
		},
		[]string{"type"}, // type: penalty, reward
	)
)

// RecordHTTPRequestDuration records one HTTP request observation.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records one database query observation.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery counts a query that exceeded the slow threshold.
func IncrementSlowQuery(query string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(query).Inc()
}

// RecordMQConsumeLatency records one MQ consumption observation.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementPenaltiesCharged counts a penalty emission by source.
func IncrementPenaltiesCharged(source string) {
	PenaltiesCharged.WithLabelValues(source).Inc()
}

// IncrementTransactionsConfirmed counts a confirmation by transaction type.
func IncrementTransactionsConfirmed(txType string) {
	TransactionsConfirmed.WithLabelValues(txType).Inc()
}
