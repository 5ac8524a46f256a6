package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for provider requests.
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_provider_requests_total",
		Help: "Total provider requests by source and status",
	}, []string{"source", "status"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bizsearch_provider_request_duration_seconds",
		Help:    "Provider request duration in seconds by source",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"source"})

	providerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_provider_errors_total",
		Help: "Total provider errors by source and class",
	}, []string{"source", "class"})

	providerRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_provider_retries_total",
		Help: "Total number of provider retry attempts by source and error class",
	}, []string{"source", "class"})

	providerRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_provider_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by source",
	}, []string{"source"})
)
