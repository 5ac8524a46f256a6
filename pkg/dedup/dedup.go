// Package dedup merges records from several providers into one
// deterministically ordered set without duplicate listings.
package dedup

import (
	"sort"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Ranker holds the source priority of one provider set.
type Ranker struct {
	priority map[record.Source]int
}

// NewRanker creates a Ranker from the provider set's ordered sources.
// The first source has the highest priority; unknown sources rank last.
func NewRanker(sources []record.Source) *Ranker {
	priority := make(map[record.Source]int, len(sources))
	for i, s := range sources {
		if _, seen := priority[s]; !seen {
			priority[s] = i
		}
	}
	return &Ranker{priority: priority}
}

// Priority returns the rank of source; lower is better.
func (r *Ranker) Priority(source record.Source) int {
	if p, ok := r.priority[source]; ok {
		return p
	}
	return len(r.priority)
}

// Merge removes records sharing a CanonicalKey. The first occurrence of a
// key holds its position; a later colliding record replaces it only when it
// wins Prefer. Records are replaced whole, never blended.
func (r *Ranker) Merge(records []record.BusinessRecord) []record.BusinessRecord {
	index := make(map[string]int, len(records))
	out := make([]record.BusinessRecord, 0, len(records))

	for _, rec := range records {
		key := rec.CanonicalKey()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, rec)
			continue
		}
		if r.Prefer(rec, out[i]) {
			out[i] = rec
		}
	}
	return out
}

// Prefer reports whether candidate should replace kept on a collision:
//  1. exactly one carries a phone: that one wins
//  2. both are rated and the ratings differ: the higher rating wins
//  3. otherwise the higher-priority source wins, and kept stays on a tie
func (r *Ranker) Prefer(candidate, kept record.BusinessRecord) bool {
	if candidate.HasPhone() != kept.HasPhone() {
		return candidate.HasPhone()
	}
	if candidate.HasRating() && kept.HasRating() && *candidate.Rating != *kept.Rating {
		return *candidate.Rating > *kept.Rating
	}
	return r.Priority(candidate.Source) < r.Priority(kept.Source)
}

// Sort orders records in place: phone first, then rating descending with
// unrated last, then source priority, then name and ID ascending.
func (r *Ranker) Sort(records []record.BusinessRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return r.less(records[i], records[j])
	})
}

func (r *Ranker) less(a, b record.BusinessRecord) bool {
	if a.HasPhone() != b.HasPhone() {
		return a.HasPhone()
	}
	if a.HasRating() != b.HasRating() {
		return a.HasRating()
	}
	if a.HasRating() && *a.Rating != *b.Rating {
		return *a.Rating > *b.Rating
	}
	if pa, pb := r.Priority(a.Source), r.Priority(b.Source); pa != pb {
		return pa < pb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// Build merges and sorts records into a new slice.
func (r *Ranker) Build(records []record.BusinessRecord) []record.BusinessRecord {
	merged := r.Merge(records)
	r.Sort(merged)
	return merged
}
