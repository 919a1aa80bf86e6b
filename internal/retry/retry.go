// Package retry implements the bounded fixed-delay retry policy used by
// the delivery engine. Only errors marked transient are retried.
package retry

import (
	"context"
	"time"

	errs "github.com/codedrop-dev/codedrop/internal/errors"
)

type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do runs op until it succeeds, fails permanently, or exhausts
// MaxAttempts. The last error is returned as-is so callers can still
// inspect the failure kind.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !errs.IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
