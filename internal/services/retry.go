package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

const (
	// MaxRetryAttempts bounds every wrapped API call, including the first try.
	MaxRetryAttempts = 3

	defaultBaseDelay = time.Second
)

// Retrier wraps an operation with bounded retry and exponential backoff:
// delays of BaseDelay*2^attempt between attempts. Unauthorized responses
// fail fast, everything else retries until the attempts are exhausted and
// the last error propagates.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	Logger    *log.Logger
	Debug     bool
}

func (r Retrier) attempts() int {
	if r.Attempts <= 0 {
		return MaxRetryAttempts
	}
	return r.Attempts
}

func (r Retrier) baseDelay() time.Duration {
	if r.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return r.BaseDelay
}

// Retry runs op under the retrier's policy.
func Retry[T any](ctx context.Context, r Retrier, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := r.attempts()

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var v T
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}
		if attempt == attempts-1 || !retryable(err) {
			return zero, err
		}

		delay := r.baseDelay() << attempt
		if r.Debug && r.Logger != nil {
			r.Logger.Debug("retrying after failure", "attempt", attempt+1, "of", attempts, "delay", delay, "err", err)
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, err
}

// retryable reports whether another attempt could plausibly succeed.
// Stale-token and missing-credential failures cannot be fixed by waiting.
func retryable(err error) bool {
	if IsUnauthorized(err) {
		return false
	}
	return !errors.Is(err, shared.ErrNotConfigured) && !errors.Is(err, shared.ErrAuthFailed)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
