package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for detail enrichment.
var (
	enrichCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_enrich_calls_total",
		Help: "Total successful detail fetches by source",
	}, []string{"source"})

	enrichFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_enrich_failures_total",
		Help: "Total failed detail fetches by source",
	}, []string{"source"})
)
