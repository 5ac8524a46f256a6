package provider

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Common errors returned by provider clients.
var (
	// ErrProviderUnavailable covers network failures, timeouts, non-2xx
	// responses and unreadable payloads. It is scoped to one provider.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited is returned when the provider throttles us.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrTokenNotReady is returned when a continuation token is used before
	// the provider accepts it. Retryable for that page only.
	ErrTokenNotReady = errors.New("continuation token not ready")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of provider errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses and rejected requests.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses and transient upstream failures.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 or quota responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTokenNotReady represents premature use of a continuation token.
	ErrorClassTokenNotReady ErrorClass = "token_not_ready"

	// ErrorClassPayload represents a response body we could not decode.
	ErrorClassPayload ErrorClass = "payload"
)

// ProviderError is a provider failure with classification context.
type ProviderError struct {
	Source     record.Source
	Class      ErrorClass
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error (status %d): %s: %v",
			e.Source, e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s error (status %d): %s",
		e.Source, e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the class sentinels so callers can use errors.Is without
// caring about the concrete error.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Class == ErrorClassRateLimit
	case ErrTokenNotReady:
		return e.Class == ErrorClassTokenNotReady
	case ErrProviderUnavailable:
		return e.Class != ErrorClassRateLimit && e.Class != ErrorClassTokenNotReady
	default:
		return false
	}
}

// ClassOf returns the class of a provider error, or "" when err carries none.
func ClassOf(err error) ErrorClass {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class
	}
	return ""
}

// IsRetryable reports whether the same page may succeed if requested again
// later. Callers decide whether to retry; pagination treats these as a
// graceful stop.
func IsRetryable(err error) bool {
	switch ClassOf(err) {
	case ErrorClassServer, ErrorClassNetwork, ErrorClassRateLimit, ErrorClassTokenNotReady:
		return true
	default:
		return false
	}
}

// shouldRetry determines if a client retries a request in place.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		// Rate limits and unready tokens end the page; retrying immediately
		// would only burn more quota.
		return false
	}
}
