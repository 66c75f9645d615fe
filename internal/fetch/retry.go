package fetch

import (
	"context"
	"errors"
	"time"
)

// FixedDelayPolicy retries failed fetches a bounded number of times with a
// constant pause between attempts.
type FixedDelayPolicy struct {
	maxAttempts int
	delay       time.Duration
}

// NewFixedDelayPolicy builds a policy; non-positive arguments fall back to
// three attempts with a one second pause.
func NewFixedDelayPolicy(maxAttempts int, delay time.Duration) *FixedDelayPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if delay <= 0 {
		delay = time.Second
	}
	return &FixedDelayPolicy{
		maxAttempts: maxAttempts,
		delay:       delay,
	}
}

// ShouldRetry decides whether the error is retryable after the given number
// of completed attempts.
func (p *FixedDelayPolicy) ShouldRetry(err error, attempts int) bool {
	if err == nil {
		return false
	}
	if attempts >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Wait blocks for the fixed delay, returning early if the context ends.
func (p *FixedDelayPolicy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
