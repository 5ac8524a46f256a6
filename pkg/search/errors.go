package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

var (
	// ErrInvalidQuery indicates a blank query; no provider or quota call is made.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrQuotaDeductionFailed indicates usage could not be recorded after a
	// successful fetch. The superset stays cached for a retry.
	ErrQuotaDeductionFailed = errors.New("quota deduction failed")

	// ErrAllProvidersFailed indicates no provider in the set produced data.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// AllProvidersFailedError reports a search in which every provider failed.
type AllProvidersFailedError struct {
	// Warning is the degraded-mode message shown to the caller.
	Warning string

	// Errors holds each provider's first-page failure.
	Errors map[record.Source]error
}

func (e *AllProvidersFailedError) Error() string {
	sources := make([]string, 0, len(e.Errors))
	for src := range e.Errors {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)

	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, fmt.Sprintf("%s: %v", src, e.Errors[record.Source(src)]))
	}
	return fmt.Sprintf("%v: %s", ErrAllProvidersFailed, strings.Join(parts, "; "))
}

// Unwrap exposes ErrAllProvidersFailed and every provider error.
func (e *AllProvidersFailedError) Unwrap() []error {
	errs := []error{ErrAllProvidersFailed}
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// failureWarning builds the non-fatal warning naming failed sources.
func failureWarning(failed []record.Source) string {
	if len(failed) == 0 {
		return ""
	}
	names := make([]string, len(failed))
	for i, src := range failed {
		names[i] = string(src)
	}
	return fmt.Sprintf("%s unreachable; results may be incomplete", strings.Join(names, ", "))
}
