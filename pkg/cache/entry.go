package cache

import (
	"time"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Superset is the merged, sorted result set of one query signature.
// It is immutable once cached; Page hands out copies.
type Superset struct {
	// Records is the deduplicated, sorted record list.
	Records []record.BusinessRecord `json:"records"`

	// Sources are the providers that contributed, in provider-set order.
	// Providers that failed are named by Warning instead.
	Sources []record.Source `json:"sources"`

	// Warning names providers that failed while the superset was built.
	Warning string `json:"warning,omitempty"`

	// BuiltAt is when the pipeline produced the superset.
	BuiltAt time.Time `json:"built_at"`
}

// Total returns the number of records.
func (s *Superset) Total() int {
	return len(s.Records)
}

// TotalPages returns ceil(Total/size). A non-positive size yields 0.
func (s *Superset) TotalPages(size int) int {
	if size <= 0 {
		return 0
	}
	return (s.Total() + size - 1) / size
}

// Page returns records [(page-1)*size, min(page*size, Total)).
// Out-of-range pages return an empty, non-nil slice.
func (s *Superset) Page(page, size int) []record.BusinessRecord {
	if page < 1 || size <= 0 {
		return []record.BusinessRecord{}
	}
	start := (page - 1) * size
	if start >= s.Total() {
		return []record.BusinessRecord{}
	}
	end := start + size
	if end > s.Total() {
		end = s.Total()
	}
	out := make([]record.BusinessRecord, end-start)
	copy(out, s.Records[start:end])
	return out
}

// Entry is a cached superset and its lifetime.
type Entry struct {
	Superset *Superset

	// CachedAt is when the entry was stored.
	CachedAt time.Time

	// Expires is when the entry becomes stale. Zero means never.
	Expires time.Time
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return !e.Expires.IsZero() && time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired, and -1 for entries that never expire.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return -1
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
