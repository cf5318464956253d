package image

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/dmorgan81/promobot/internal/log"
)

// Backoff returns the wait before the given retry; attempt starts at 1.
type Backoff interface {
	Delay(attempt int) time.Duration
}

type FixedBackoff struct {
	Interval time.Duration
}

func (b FixedBackoff) Delay(int) time.Duration {
	return b.Interval
}

// ExponentialBackoff doubles Base per attempt up to Max. Jitter in [0,1]
// randomizes that fraction of each delay.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
	Rand   func() float64
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 1; i < attempt && (b.Max <= 0 || d < b.Max); i++ {
		if d > math.MaxInt64/2 {
			d = math.MaxInt64
			break
		}
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	if b.Jitter > 0 {
		rnd := b.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		d -= time.Duration(float64(d) * b.Jitter * rnd())
	}
	return d
}

// RetryPolicy re-runs an operation on transient errors. Sleep defaults to a
// context-aware timer.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     Backoff
	Sleep       func(context.Context, time.Duration) error
}

func transient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}

// Do calls op until it succeeds, fails with a non-transient error, or
// MaxAttempts is reached. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	logger := log.FromContextOrDiscard(ctx).WithGroup("retry")
	attempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil || !transient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.Delay(attempt)
		}
		logger.Warn("transient failure, retrying", "attempt", attempt, "max_attempts", attempts, "delay", delay.String(), log.Err(err))
		if serr := sleep(ctx, delay); serr != nil {
			return errors.Join(err, serr)
		}
	}
	logger.Error("retries exhausted", "attempts", attempts, log.Err(err))
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
