package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "cache_hits_total", Help: "Number of cache hits by cache name."},
		[]string{"cache"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "cache_misses_total", Help: "Number of cache misses by cache name."},
		[]string{"cache"},
	)
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "cache_evictions_total", Help: "Number of whole-cache evictions by cache name and trigger (mutation or sweep)."},
		[]string{"cache", "trigger"},
	)
	QueueDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "queue_author_deletes_total", Help: "Author delete commands consumed from the queue by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dms", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(CacheHits)
	reg.MustRegister(CacheMisses)
	reg.MustRegister(CacheEvictions)
	reg.MustRegister(QueueDeletes)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
