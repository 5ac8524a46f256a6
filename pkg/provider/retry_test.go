package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/rs/zerolog"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", config.MaxAttempts)
	}
	if config.InitialBackoff != 250*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 250ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 2*time.Second {
		t.Errorf("MaxBackoff = %v, want 2s", config.MaxBackoff)
	}
}

func TestWithRetry_Success(t *testing.T) {
	callCount := 0
	err := withRetry(context.Background(), fastRetry(3), record.SourceKakao, zerolog.Nop(), func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_SucceedsAfterServerError(t *testing.T) {
	callCount := 0
	err := withRetry(context.Background(), fastRetry(3), record.SourceKakao, zerolog.Nop(), func() error {
		callCount++
		if callCount < 2 {
			return &ProviderError{Class: ErrorClassServer, StatusCode: 502}
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected success after retry, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 calls, got %d", callCount)
	}
}

func TestWithRetry_ClientErrorNotRetried(t *testing.T) {
	callCount := 0
	clientErr := &ProviderError{Class: ErrorClassClient, StatusCode: 401}
	err := withRetry(context.Background(), fastRetry(3), record.SourceNaver, zerolog.Nop(), func() error {
		callCount++
		return clientErr
	})

	if !errors.Is(err, clientErr) {
		t.Errorf("Expected client error returned as-is, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	callCount := 0
	err := withRetry(context.Background(), fastRetry(3), record.SourceGoogle, zerolog.Nop(), func() error {
		callCount++
		return &ProviderError{Class: ErrorClassNetwork}
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Exhausted error should still match ErrProviderUnavailable, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffMultiplier: 2}

	callCount := 0
	err := withRetry(ctx, cfg, record.SourceKakao, zerolog.Nop(), func() error {
		callCount++
		cancel()
		return &ProviderError{Class: ErrorClassServer}
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", callCount)
	}
}

func TestWithRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	callCount := 0
	_ = withRetry(context.Background(), RetryConfig{}, record.SourceKakao, zerolog.Nop(), func() error {
		callCount++
		return &ProviderError{Class: ErrorClassServer}
	})

	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}
