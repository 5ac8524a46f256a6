// Package pagination drives one provider's multi-page fetch.
//
// Providers paginate sequentially: each page depends on the cursor the
// previous one returned, so pages of one provider are never fetched in
// parallel. An Iterator yields pages lazily and enforces a minimum delay
// between fetches; for token cursors it also waits until the token is old
// enough to be accepted.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	result, err := pagination.Collect(ctx, kakaoClient, query, cfg)
//	if err != nil {
//	    // first page failed: this provider contributes nothing
//	}
//	if result.Err != nil {
//	    // a later page failed: result.Records holds the pages collected so far
//	}
//
// Pagination stops on the first of:
//   - a short page (fewer records than the provider's page size)
//   - the MaxPages cap
//   - an empty page
//   - the provider reporting the last page
//   - a fetch error
package pagination
