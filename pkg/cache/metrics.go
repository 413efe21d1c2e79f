package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CacheRequests counts lookups by cache name and result (hit or miss).
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursesensei_cache_requests_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	// CacheEvictions counts entries dropped to stay within capacity.
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursesensei_cache_evictions_total",
			Help: "Total number of entries evicted from a bounded cache",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(CacheRequests)
	prometheus.MustRegister(CacheEvictions)
}
