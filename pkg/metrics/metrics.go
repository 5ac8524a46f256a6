// Package metrics provides the Prometheus registry and handler for the search service.
// All metrics are defined in their respective packages (provider, pagination,
// enrich, cache, quota, region, search) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the search service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry /metrics is served from.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Provider Metrics (pkg/provider):
//   - bizsearch_provider_requests_total{source, status} (Counter): Provider requests by source and HTTP status
//   - bizsearch_provider_request_duration_seconds{source} (Histogram): Provider request duration
//   - bizsearch_provider_errors_total{source, class} (Counter): Errors by class (client, server, rate_limit, network, token_not_ready, payload)
//   - bizsearch_provider_retries_total{source, class} (Counter): Retry attempts
//   - bizsearch_provider_retry_exhausted_total{source} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - bizsearch_pagination_pages_total{source} (Counter): Pages fetched
//   - bizsearch_pagination_stops_total{source, reason} (Counter): Why pagination ended
//     (short_page, provider_done, max_pages, empty_page, error)
//
// Enrichment Metrics (pkg/enrich):
//   - bizsearch_enrich_calls_total{source} (Counter): Detail fetches
//   - bizsearch_enrich_failures_total{source} (Counter): Detail fetches that kept the base record
//
// Cache Metrics (pkg/cache):
//   - bizsearch_cache_hits_total (Counter): Superset cache hits
//   - bizsearch_cache_misses_total (Counter): Superset cache misses
//   - bizsearch_cache_entries (Gauge): Cached supersets
//   - bizsearch_cache_evictions_total{reason} (Counter): Evictions (expired, capacity)
//   - bizsearch_cache_errors_total{operation} (Counter): Cache operation errors
//
// Quota Metrics (pkg/quota):
//   - bizsearch_quota_checks_total{result} (Counter): Checks (allowed, denied, error)
//   - bizsearch_quota_deductions_total{result} (Counter): Deductions (ok, exceeded, error)
//   - bizsearch_quota_low_total (Counter): Deductions leaving a user below 20% remaining
//
// Region Metrics (pkg/region):
//   - bizsearch_region_resolutions_total{set, reason} (Counter): Provider set decisions
//
// Search Metrics (pkg/search):
//   - bizsearch_search_requests_total{result} (Counter): Searches by outcome
//   - bizsearch_pipeline_duration_seconds (Histogram): Cache-miss pipeline duration
//   - bizsearch_singleflight_shared_total (Counter): Searches that joined a running pipeline
//   - bizsearch_search_provider_failures_total{source} (Counter): Providers dropped from a superset
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(bizsearch_cache_hits_total[5m])) /
//   (sum(rate(bizsearch_cache_hits_total[5m])) + sum(rate(bizsearch_cache_misses_total[5m])))
//
//   # Degraded searches per provider
//   rate(bizsearch_search_provider_failures_total[5m])
//
//   # P95 Provider Latency
//   histogram_quantile(0.95, rate(bizsearch_provider_request_duration_seconds_bucket[5m]))
//
//   # Pages cut short by errors
//   rate(bizsearch_pagination_stops_total{reason="error"}[5m])
