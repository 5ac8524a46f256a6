package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks superset cache hits
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bizsearch_cache_hits_total",
			Help: "Total number of superset cache hits",
		},
	)

	// cacheMisses tracks superset cache misses, expired entries included
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bizsearch_cache_misses_total",
			Help: "Total number of superset cache misses",
		},
	)

	// cacheEntries tracks resident entries
	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bizsearch_cache_entries",
			Help: "Current number of cached supersets",
		},
	)

	// cacheEvictions tracks removed entries by reason
	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsearch_cache_evictions_total",
			Help: "Total number of evicted supersets by reason",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	// cacheErrors tracks rejected cache operations
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsearch_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "set"
	)
)
