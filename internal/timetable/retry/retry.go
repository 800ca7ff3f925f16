// Package retry runs calls to the directions service under a bounded exponential backoff.
// Only transient failures are retried; every other kind is returned immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	perr "github.com/transit-daytable/internal/common/errors"
)

// Policy bounds the retry loop
type Policy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// Notify is called before each backoff sleep with the failed attempt number (1-based)
type Notify func(attempt int, err error, wait time.Duration)

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		b.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		b.MaxInterval = p.Max
	}
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do runs op until it succeeds, fails with a non-transient error, or the policy
// is exhausted. An exhausted policy escalates the last transient error to fatal by
// wrapping it; the kind stays KindTransient. A context canceled during a backoff
// sleep yields KindCanceled.
func Do(ctx context.Context, p Policy, op func() error, notify Notify) error {
	attempt := 0

	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if perr.KindOf(err) != perr.KindTransient {
			return backoff.Permanent(err)
		}
		return err
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, wait time.Duration) {
			notify(attempt, err, wait)
		}
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), onRetry)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return perr.Wrap(ctxErr, perr.KindCanceled, "retry.Do", "canceled while backing off")
	}
	if perr.KindOf(err) == perr.KindTransient {
		return perr.Wrap(err, perr.KindTransient, "retry.Do", fmt.Sprintf("giving up after %d attempts", attempt))
	}
	return err
}
