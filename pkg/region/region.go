// Package region decides which provider set serves a search.
//
// Resolution precedence, first match wins:
//  1. an explicit override from the caller
//  2. the region hint matched against curated city lists, with a
//     Hangul-script fallback to the domestic set
//  3. the GeoDefaultProvider's answer for the client address
package region

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/rs/zerolog"
)

// SetID names a provider set.
type SetID string

const (
	// Domestic serves Korean searches.
	Domestic SetID = "domestic"

	// International serves searches abroad.
	International SetID = "international"
)

// ErrUnknownSet is returned for a provider set ID that is not configured.
var ErrUnknownSet = errors.New("unknown provider set")

// ParseSetID parses a provider set name. The empty string is valid and
// means "no override".
func ParseSetID(s string) (SetID, error) {
	switch SetID(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case Domestic:
		return Domestic, nil
	case International:
		return International, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSet, s)
	}
}

// Sets maps each provider set to its ordered sources. The first source is
// the primary and has the highest dedup priority.
type Sets map[SetID][]record.Source

// DefaultSets returns the shipped provider sets.
func DefaultSets() Sets {
	return Sets{
		Domestic:      {record.SourceKakao, record.SourceNaver},
		International: {record.SourceGoogle, record.SourceKakao},
	}
}

// Sources returns the ordered sources of id.
func (s Sets) Sources(id SetID) ([]record.Source, error) {
	sources, ok := s[id]
	if !ok || len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, id)
	}
	return append([]record.Source(nil), sources...), nil
}

// GeoDefaultProvider picks a provider set from the client's network address.
type GeoDefaultProvider interface {
	ResolveDefaultProviderSet(ctx context.Context, clientAddress string) (SetID, error)
}

// StaticGeoDefault answers every address with the same set.
type StaticGeoDefault struct {
	Set SetID
}

// ResolveDefaultProviderSet implements GeoDefaultProvider.
func (g StaticGeoDefault) ResolveDefaultProviderSet(ctx context.Context, clientAddress string) (SetID, error) {
	if g.Set == "" {
		return Domestic, nil
	}
	return g.Set, nil
}

// Reason records which rule picked a set.
type Reason string

const (
	ReasonOverride     Reason = "override"
	ReasonDomesticCity Reason = "domestic_city"
	ReasonForeignCity  Reason = "foreign_city"
	ReasonLocalScript  Reason = "local_script"
	ReasonGeoDefault   Reason = "geo_default"
	ReasonFallback     Reason = "fallback"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Set    SetID
	Reason Reason
}

// Resolver applies the precedence rules.
type Resolver struct {
	domestic []string
	foreign  []string
	geo      GeoDefaultProvider
	fallback SetID
	logger   zerolog.Logger
}

// NewResolver creates a Resolver with the curated city lists. A nil geo
// provider resolves unmatched hints to the domestic set.
func NewResolver(geo GeoDefaultProvider) *Resolver {
	return &Resolver{
		domestic: foldAll(domesticCities),
		foreign:  foldAll(foreignCities),
		geo:      geo,
		fallback: Domestic,
		logger:   logging.NewLogger("region"),
	}
}

// Resolve picks the provider set for a search.
// An invalid override is an error; a failing geo provider is not.
func (r *Resolver) Resolve(ctx context.Context, override, hint, clientAddress string) (Resolution, error) {
	res, err := r.resolve(ctx, override, hint, clientAddress)
	if err != nil {
		return Resolution{}, err
	}
	resolutionsTotal.WithLabelValues(string(res.Set), string(res.Reason)).Inc()
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, override, hint, clientAddress string) (Resolution, error) {
	id, err := ParseSetID(override)
	if err != nil {
		return Resolution{}, err
	}
	if id != "" {
		return Resolution{Set: id, Reason: ReasonOverride}, nil
	}

	if res, ok := r.matchHint(hint); ok {
		return res, nil
	}

	if r.geo == nil {
		return Resolution{Set: r.fallback, Reason: ReasonFallback}, nil
	}
	id, err = r.geo.ResolveDefaultProviderSet(ctx, clientAddress)
	if err == nil {
		_, err = ParseSetID(string(id))
	}
	if err != nil || id == "" {
		r.logger.Warn().Err(err).Str("client_address", clientAddress).Msg("Geo default failed, using fallback set")
		return Resolution{Set: r.fallback, Reason: ReasonFallback}, nil
	}
	return Resolution{Set: id, Reason: ReasonGeoDefault}, nil
}

// matchHint applies the curated lists, then the script fallback.
func (r *Resolver) matchHint(hint string) (Resolution, bool) {
	words := tokenize(hint)
	if len(words) == 0 {
		return Resolution{}, false
	}
	if matchAny(words, r.domestic) {
		return Resolution{Set: Domestic, Reason: ReasonDomesticCity}, true
	}
	if matchAny(words, r.foreign) {
		return Resolution{Set: International, Reason: ReasonForeignCity}, true
	}
	if hasHangul(hint) {
		return Resolution{Set: Domestic, Reason: ReasonLocalScript}, true
	}
	return Resolution{}, false
}

// matchAny reports whether a run of consecutive words spells one of the
// folded names, so "Rome" matches but "Romeo" does not. A Hangul name also
// matches the start of a word, since Korean attaches suffixes such as 구,
// 역 or 에서 directly to the place name.
func matchAny(words []string, names []string) bool {
	for i := range words {
		joined := ""
		for j := i; j < len(words); j++ {
			joined += words[j]
			for _, name := range names {
				if joined == name {
					return true
				}
				if j == i && hasHangul(name) && strings.HasPrefix(joined, name) {
					return true
				}
			}
		}
	}
	return false
}

// tokenize lower-cases s and splits it into words of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// fold lower-cases s and drops whitespace and punctuation so "Ho Chi Minh"
// and "ho-chi-minh" compare equal.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func foldAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if f := fold(n); f != "" {
			out = append(out, f)
		}
	}
	return out
}
