// Package cache memoizes merged search results per query signature.
//
// A cache entry holds the full deduplicated superset of one query, so every
// page request after the first is a slice of memory rather than a round of
// provider calls. The Manager is an explicit object shared by reference;
// there is no package-level cache.
//
// # Basic Usage
//
//	manager := cache.NewManager(cache.Options{})
//
//	sig := cache.NewSignature("카페", "강남", "domestic")
//
//	superset, err := manager.Get(sig)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - run the provider pipeline, then:
//		_ = manager.Set(sig, built)
//	}
//
//	records := superset.Page(2, 10)
//
// # Bounds
//
// Options{} keeps entries for the process lifetime. Options.TTL expires
// entries on read; Options.MaxEntries evicts the oldest entry on write.
//
// # Metrics
//
//   - bizsearch_cache_hits_total - Cache hits
//   - bizsearch_cache_misses_total - Cache misses
//   - bizsearch_cache_entries - Resident supersets
//   - bizsearch_cache_evictions_total{reason} - Expired or capacity evictions
//   - bizsearch_cache_errors_total{operation} - Rejected operations
package cache
