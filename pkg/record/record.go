// Package record defines the provider-agnostic business listing shared by
// every stage of the search pipeline.
package record

import (
	"strings"
	"unicode"
)

// Source identifies the external provider a record came from.
type Source string

const (
	// SourceKakao is the Kakao Local keyword search API.
	SourceKakao Source = "kakao"

	// SourceNaver is the Naver local search API.
	SourceNaver Source = "naver"

	// SourceGoogle is the Google Places text search API.
	SourceGoogle Source = "google"
)

// BusinessRecord is a normalized business listing.
// Records are treated as values: later stages replace them, never mutate.
type BusinessRecord struct {
	// ID is source-prefixed and globally unique, e.g. "kakao:26338954".
	ID string `json:"id"`

	Name    string `json:"name"`
	Address string `json:"address"`

	// Phone is normalized with NormalizePhone. Empty when unknown.
	Phone string `json:"phone,omitempty"`

	// Rating is nil when the provider does not rate the listing.
	Rating *float64 `json:"rating,omitempty"`

	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    Source  `json:"source"`
}

// HasPhone reports whether the record carries a contact number.
func (r BusinessRecord) HasPhone() bool {
	return strings.TrimSpace(r.Phone) != ""
}

// HasRating reports whether the record carries a rating.
func (r BusinessRecord) HasRating() bool {
	return r.Rating != nil
}

// CanonicalKey returns the dedup identity of the record: name and address,
// case-folded with all whitespace removed.
func (r BusinessRecord) CanonicalKey() string {
	return fold(r.Name) + "|" + fold(r.Address)
}

// WithPhone returns a copy of the record carrying the given phone.
func (r BusinessRecord) WithPhone(phone string) BusinessRecord {
	r.Phone = NormalizePhone(phone)
	return r
}

// MakeID builds a source-prefixed record ID.
func MakeID(source Source, providerID string) string {
	return string(source) + ":" + providerID
}

// Float returns a pointer to v, for optional ratings.
func Float(v float64) *float64 {
	return &v
}

func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
