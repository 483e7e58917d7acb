// Package retryx wraps collaborator calls with exponential backoff.
// Only failures explicitly marked Transient are retried; everything else
// propagates immediately.
package retryx

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	MaxRetries uint          `envconfig:"MAX_RETRIES" split_words:"true" default:"3"`
	BaseDelay  time.Duration `envconfig:"BASE_DELAY" split_words:"true" default:"200ms"`
	MaxDelay   time.Duration `envconfig:"MAX_DELAY" split_words:"true" default:"5s"`
}

func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// Transient marks an error as retryable (rate limited, temporarily
// unavailable). Unmarked errors are treated as permanent.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Do runs op under the policy: delay = BaseDelay * 2^attempt, capped at
// MaxDelay, for at most MaxRetries retries after the first attempt.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	base := policy.BaseDelay
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	expo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(maxDelay),
		backoff.WithRandomizationFactor(0),
	)

	b := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(policy.MaxRetries)), ctx)

	return backoff.RetryWithData(func() (T, error) {
		out, err := op(ctx)
		if err != nil && !IsTransient(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, b)
}
