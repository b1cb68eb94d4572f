package indexer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:     attempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorAction
	}{
		{"network error", errors.New("connection refused"), ActionRetry},
		{"server error", &StatusError{Status: 500}, ActionRetry},
		{"bad gateway", &StatusError{Status: 502}, ActionRetry},
		{"rate limited", &StatusError{Status: 429}, ActionRetry},
		{"bad request", &StatusError{Status: 400}, ActionFatal},
		{"not found", &StatusError{Status: 404}, ActionFatal},
		{"decode failure", &decodeError{err: errors.New("bad json")}, ActionFatal},
		{"wrapped status", errors.Join(errors.New("outer"), &StatusError{Status: 403}), ActionFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := callWithRetry(context.Background(), fastRetry(5), func() error {
		calls++
		if calls < 3 {
			return &StatusError{Status: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("callWithRetry() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	fatal := &StatusError{Status: 400}
	err := callWithRetry(context.Background(), fastRetry(5), func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Errorf("err = %v, want the fatal error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on fatal)", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := callWithRetry(context.Background(), fastRetry(3), func() error {
		calls++
		return &StatusError{Status: 500}
	})
	if err == nil {
		t.Fatal("callWithRetry() = nil, want error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := callWithRetry(ctx, RetryConfig{
		MaxAttempts:     10,
		InitialDelay:    time.Hour,
		MaxDelay:        time.Hour,
		BackoffMultiple: 2.0,
	}, func() error {
		calls++
		cancel()
		return &StatusError{Status: 500}
	})
	if err == nil {
		t.Fatal("callWithRetry() = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled before backoff)", calls)
	}
}
