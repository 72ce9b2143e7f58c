// Package retry holds the one retry policy shared by the enhancement and
// performance clients, so transiency rules and backoff are defined and
// tested in a single place.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
)

// Policy describes how many attempts an operation gets and how long to wait
// between them. Backoff follows min(base * 2^attempt, cap) with no jitter,
// to keep behavior reproducible.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
	IsTransient func(error) bool
}

// Default is the policy used by both remote clients unless a test
// substitutes shorter intervals.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Base:        time.Second,
		Cap:         30 * time.Second,
		IsTransient: func(err error) bool { return errs.Classify(err).IsTransient },
	}
}

// Backoff returns the wait before the given zero-based retry attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.Cap {
			return p.Cap
		}
	}
	if d > p.Cap {
		return p.Cap
	}
	return d
}

// Do runs op until it succeeds, exhausts the attempt budget, the context is
// canceled, or a non-transient error occurs. Non-transient failures return
// immediately without consuming retries.
func (p Policy) Do(ctx context.Context, log logging.Logger, name string, op func(ctx context.Context) error) error {
	isTransient := p.IsTransient
	if isTransient == nil {
		isTransient = func(err error) bool { return errs.Classify(err).IsTransient }
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Base
	exp.MaxInterval = p.Cap
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	attempt := 0
	wrapped := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		attempt++
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		if log != nil {
			log.Warn("transient failure, will retry", logging.Fields{
				"operation": name,
				"attempt":   attempt,
				"error":     err.Error(),
			})
		}
		return err
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(maxAttempts-1)), ctx)
	return backoff.Retry(wrapped, b)
}
