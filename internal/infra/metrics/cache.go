package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheInvalidationsTotal, cacheKeysDeletedTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Tracks cache hits and misses for the statistics reports.",
		},
		[]string{"cache", "result"}, // e.g., cache="top", result="hit"
	)

	cacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_invalidations_total",
			Help: "Cache invalidation runs by scope (chat, all) and outcome.",
		},
		[]string{"scope", "result"},
	)

	cacheKeysDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_cache_keys_deleted_total",
			Help: "Number of cache keys removed by invalidation scans.",
		},
	)
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func IncCacheInvalidation(scope, result string) {
	cacheInvalidationsTotal.WithLabelValues(norm(scope), norm(result)).Inc()
}

func AddCacheKeysDeleted(n int) {
	cacheKeysDeletedTotal.Add(float64(n))
}
