package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for search orchestration.
var (
	searchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_search_requests_total",
		Help: "Total search requests by result",
	}, []string{"result"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bizsearch_pipeline_duration_seconds",
		Help:    "Duration of cache-miss pipeline runs (fetch, enrich, dedup)",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
	})

	singleflightSharedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bizsearch_singleflight_shared_total",
		Help: "Total searches served by joining another request's pipeline run",
	})

	providerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_search_provider_failures_total",
		Help: "Total providers dropped from a superset by source",
	}, []string{"source"})
)

// Result labels for searchRequestsTotal.
const (
	resultOK              = "ok"
	resultInvalid         = "invalid"
	resultQuotaExceeded   = "quota_exceeded"
	resultProvidersFailed = "providers_failed"
	resultDeductionFailed = "deduction_failed"
	resultError           = "error"
)
