package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// BlogReads counts successful single-post reads.
	BlogReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_blog_reads_total",
		Help: "Total number of published blog posts served by id",
	})

	// BlogMutations counts post writes by operation.
	BlogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_blog_mutations_total",
		Help: "Total number of blog post mutations",
	}, []string{"operation"})

	// ListCacheLookups counts listing cache hits and misses.
	ListCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_list_cache_lookups_total",
		Help: "Blog listing cache lookups by result",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
