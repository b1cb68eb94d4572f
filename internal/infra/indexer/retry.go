package indexer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryConfig defines retry behavior for indexer API calls.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    500 * time.Millisecond,
	MaxDelay:        10 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle a failed call.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

// StatusError carries an unexpected HTTP status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// ClassifyError determines the action for a given error. Network failures,
// timeouts, 5xx and 429 are transient; any other client error is fatal for
// the request (retrying a 400 will never succeed).
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Status == 429 || se.Status >= 500 {
			return ActionRetry
		}
		return ActionFatal
	}
	// Decode failures are fatal: the payload will not improve on retry.
	var de *decodeError
	if errors.As(err, &de) {
		return ActionFatal
	}
	return ActionRetry
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// callWithRetry executes fn with exponential backoff until it succeeds, the
// attempts are exhausted, the error classifies as fatal, or the context ends.
func callWithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(config.InitialDelay) *
				math.Pow(config.BackoffMultiple, float64(attempt-1)))
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ClassifyError(err) == ActionFatal {
			return err
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", config.MaxAttempts, lastErr)
}
