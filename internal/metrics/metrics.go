// Package metrics provides Prometheus metrics for the query resolution pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "queryforge"

var (
	// CacheHits counts cache hits per strategy.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of cache hits",
		},
		[]string{"strategy"},
	)

	// CacheMisses counts cache misses per strategy.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of cache misses",
		},
		[]string{"strategy"},
	)

	// CacheStores counts successful cache writes per strategy.
	CacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_stores_total",
			Help:      "Number of validated responses written to the cache",
		},
		[]string{"strategy"},
	)

	// GenerationTotal counts generation attempts by outcome
	// ("validated", "rejected", "error").
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_total",
			Help:      "Number of generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ResolveDuration observes end-to-end resolution latency.
	ResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "End-to-end query resolution latency",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy", "source"},
	)

	// ResolveErrors counts failed resolutions by error type.
	ResolveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_errors_total",
			Help:      "Number of failed resolutions by error type",
		},
		[]string{"type"},
	)
)
