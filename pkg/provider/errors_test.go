package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{name: "client error should not retry", errorClass: ErrorClassClient, expected: false},
		{name: "server error should retry", errorClass: ErrorClassServer, expected: true},
		{name: "network error should retry", errorClass: ErrorClassNetwork, expected: true},
		{name: "rate limit ends the page", errorClass: ErrorClassRateLimit, expected: false},
		{name: "unready token ends the page", errorClass: ErrorClassTokenNotReady, expected: false},
		{name: "payload error should not retry", errorClass: ErrorClassPayload, expected: false},
		{name: "empty error class should not retry", errorClass: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.errorClass); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, got, tt.expected)
			}
		})
	}
}

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name: "error with wrapped error",
			err: &ProviderError{
				Source:     record.SourceKakao,
				Class:      ErrorClassNetwork,
				StatusCode: 0,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "kakao network error (status 0): request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			err: &ProviderError{
				Source:     record.SourceNaver,
				Class:      ErrorClassServer,
				StatusCode: 503,
				Message:    "503 Service Unavailable",
			},
			expected: "naver server error (status 503): 503 Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProviderError_Is(t *testing.T) {
	tests := []struct {
		name        string
		class       ErrorClass
		unavailable bool
		rateLimited bool
		tokenReady  bool
	}{
		{name: "network", class: ErrorClassNetwork, unavailable: true},
		{name: "server", class: ErrorClassServer, unavailable: true},
		{name: "client", class: ErrorClassClient, unavailable: true},
		{name: "payload", class: ErrorClassPayload, unavailable: true},
		{name: "rate limit", class: ErrorClassRateLimit, rateLimited: true},
		{name: "token not ready", class: ErrorClassTokenNotReady, tokenReady: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Wrapped twice to prove errors.Is walks the chain.
			err := fmt.Errorf("page 2: %w", fmt.Errorf("fetch: %w", &ProviderError{Class: tt.class}))

			if got := errors.Is(err, ErrProviderUnavailable); got != tt.unavailable {
				t.Errorf("Is(ErrProviderUnavailable) = %v, want %v", got, tt.unavailable)
			}
			if got := errors.Is(err, ErrRateLimited); got != tt.rateLimited {
				t.Errorf("Is(ErrRateLimited) = %v, want %v", got, tt.rateLimited)
			}
			if got := errors.Is(err, ErrTokenNotReady); got != tt.tokenReady {
				t.Errorf("Is(ErrTokenNotReady) = %v, want %v", got, tt.tokenReady)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "client", err: &ProviderError{Class: ErrorClassClient}, want: false},
		{name: "payload", err: &ProviderError{Class: ErrorClassPayload}, want: false},
		{name: "server", err: &ProviderError{Class: ErrorClassServer}, want: true},
		{name: "rate limit", err: &ProviderError{Class: ErrorClassRateLimit}, want: true},
		{name: "token not ready", err: &ProviderError{Class: ErrorClassTokenNotReady}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
