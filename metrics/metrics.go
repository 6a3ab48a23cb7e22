// Package metrics provides Prometheus metrics for the MediaWiki list client.
// It tracks tool calls, API round-trips, list enumeration progress and cache performance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "mediawiki_list"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// CacheHits counts cache hits
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count",
	})

	// CacheMisses counts cache misses
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count",
	})

	// CacheSize tracks current cache entry count
	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_entries",
		Help:      "Current number of cache entries",
	})

	// CacheEvictions counts cache evictions
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_evictions_total",
		Help:      "Total cache eviction count",
	})

	// APILatency measures api.php round-trip latency by action
	APILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_latency_seconds",
		Help:      "MediaWiki API call latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// APIRequestsTotal counts api.php requests
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total MediaWiki API requests by action and status",
	}, []string{"action", "status"})

	// APIErrors counts API errors by MediaWiki error code
	APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_errors_total",
		Help:      "MediaWiki API errors by action and error code",
	}, []string{"action", "error_code"})

	// APIRetries counts transport retries
	APIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_retries_total",
		Help:      "Transport retry count by reason",
	}, []string{"reason"})

	// APIWarnings counts warnings returned alongside data
	APIWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_warnings_total",
		Help:      "API warnings by list and module",
	}, []string{"list", "module"})

	// RateLimitWaits counts requests that had to wait for the rate limiter
	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Requests that waited for a rate limiter token or semaphore slot",
	})

	// CircuitBreakerState tracks the breaker state (0 closed, 1 open, 2 half-open)
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open",
	})

	// ListBatches counts batches fetched per list
	ListBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "list_batches_total",
		Help:      "Batches fetched by list and status",
	}, []string{"list", "status"})

	// ListItems counts items handed to consumers
	ListItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "list_items_total",
		Help:      "Items yielded by list",
	}, []string{"list"})

	// ListBatchSize records how many items each batch carried
	ListBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "list_batch_size",
		Help:      "Items per fetched batch",
		Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000, 5000},
	}, []string{"list"})

	// ContinuationLoops counts repeated continuation markers and how they were handled
	ContinuationLoops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "continuation_loops_total",
		Help:      "Repeated continuation markers by list, behavior and outcome",
	}, []string{"list", "behavior", "outcome"})

	// Enumerations counts finished enumerations by outcome
	Enumerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "enumerations_total",
		Help:      "Finished enumerations by list and outcome",
	}, []string{"list", "outcome"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})
)

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records one api.php round-trip
func RecordAPICall(action string, duration float64, success bool, errorCode string) {
	APIRequestsTotal.WithLabelValues(action, status(success)).Inc()
	APILatency.WithLabelValues(action).Observe(duration)
	if errorCode != "" {
		APIErrors.WithLabelValues(action, errorCode).Inc()
	}
}

// RecordBatch records one fetched batch
func RecordBatch(list string, items int, success bool) {
	ListBatches.WithLabelValues(list, status(success)).Inc()
	if success {
		ListBatchSize.WithLabelValues(list).Observe(float64(items))
	}
}

// RecordContinuationLoop records a repeated marker and whether the engine recovered
func RecordContinuationLoop(list, behavior string, recovered bool) {
	outcome := "error"
	if recovered {
		outcome = "refetch"
	}
	ContinuationLoops.WithLabelValues(list, behavior, outcome).Inc()
}

// RecordEnumeration records how an enumeration ended: done, error or canceled
func RecordEnumeration(list, outcome string) {
	Enumerations.WithLabelValues(list, outcome).Inc()
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// SetCacheSize updates the current cache size gauge
func SetCacheSize(size int64) {
	CacheSize.Set(float64(size))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
