package cache

import (
	"strings"
)

// QuerySignature identifies one cached superset.
type QuerySignature struct {
	// Query is the normalized search keyword.
	Query string

	// Region is the normalized region text, empty when none was given.
	Region string

	// ProviderSet is the resolved provider set ID.
	ProviderSet string
}

// NewSignature builds a signature with every component normalized:
// trimmed, inner whitespace collapsed to one space, lower-cased.
func NewSignature(query, region, providerSet string) QuerySignature {
	return QuerySignature{
		Query:       normalize(query),
		Region:      normalize(region),
		ProviderSet: normalize(providerSet),
	}
}

// String generates a deterministic cache key string.
// Format: bizsearch:<set>:<region>:<query>
//
// Example:
//
//	bizsearch:domestic:강남:카페
func (s QuerySignature) String() string {
	parts := []string{
		"bizsearch",
		keyEscaper.Replace(s.ProviderSet),
		keyEscaper.Replace(s.Region),
		keyEscaper.Replace(s.Query),
	}
	return strings.Join(parts, ":")
}

// keyEscaper keeps ":" inside a component from shifting component
// boundaries.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
