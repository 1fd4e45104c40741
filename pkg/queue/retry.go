package queue

import (
	"fmt"
	"time"
)

// MaxAttemptsLimit caps the attempt budget of a single task
const MaxAttemptsLimit = 25

// maxBackoffShift keeps Backoff << shift inside the int64 range
const maxBackoffShift = 30

// RetryPolicy describes how many times a task may run and how long to wait between runs.
// The policy is copied into the task at enqueue time and never changes afterwards.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is used by an Enqueuer created without WithRetryPolicy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 5 * time.Second}
}

// Validate checks the policy bounds
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 || p.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("%w: max attempts must be between 1 and %d, got %d", ErrInvalidRetryPolicy, MaxAttemptsLimit, p.MaxAttempts)
	}
	if p.Backoff < 0 {
		return fmt.Errorf("%w: backoff must not be negative", ErrInvalidRetryPolicy)
	}
	return nil
}

// Delay returns the wait before the next run after the given failed attempt.
// Exponential: Backoff, 2*Backoff, 4*Backoff... for attempts 1, 2, 3...
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.Backoff <= 0 {
		return 0
	}
	shift := min(attempt-1, maxBackoffShift)
	return p.Backoff << shift
}
