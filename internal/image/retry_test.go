package image

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func TestRetryFixedInterval(t *testing.T) {
	rec := &sleepRecorder{}
	p := RetryPolicy{MaxAttempts: 3, Backoff: FixedBackoff{Interval: 10 * time.Second}, Sleep: rec.sleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &ThrottledError{Code: "ThrottlingException", Message: "slow down"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d", calls)
	}
	if len(rec.delays) != 2 || rec.delays[0] != 10*time.Second || rec.delays[1] != 10*time.Second {
		t.Errorf("delays = %v", rec.delays)
	}
}

func TestRetryExhausted(t *testing.T) {
	rec := &sleepRecorder{}
	p := RetryPolicy{MaxAttempts: 2, Backoff: FixedBackoff{Interval: time.Second}, Sleep: rec.sleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return &ThrottledError{Code: "ThrottlingException", Message: "slow down"}
	})
	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if calls != 2 || len(rec.delays) != 1 {
		t.Errorf("calls = %d, sleeps = %d", calls, len(rec.delays))
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	rec := &sleepRecorder{}
	p := RetryPolicy{MaxAttempts: 5, Backoff: FixedBackoff{Interval: time.Second}, Sleep: rec.sleep}

	for _, permanent := range []error{
		&ServiceError{Code: "AccessDeniedException", Message: "denied"},
		&ContentFilteredError{Reason: FinishContentFiltered},
	} {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return permanent
		})
		if err != permanent {
			t.Errorf("got %v, want %v", err, permanent)
		}
		if calls != 1 {
			t.Errorf("%T retried %d times", permanent, calls)
		}
	}
	if len(rec.delays) != 0 {
		t.Errorf("slept for permanent errors: %v", rec.delays)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, Backoff: FixedBackoff{Interval: time.Hour}}

	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return &ThrottledError{Message: "slow down"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: time.Second, Max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.Delay(i + 1); got != w {
			t.Errorf("Delay(%d) = %v, want %v", i+1, got, w)
		}
	}

	unbounded := ExponentialBackoff{Base: time.Second}
	for _, attempt := range []int{35, 64, 200} {
		if got := unbounded.Delay(attempt); got <= 0 {
			t.Errorf("Delay(%d) = %v, want positive", attempt, got)
		}
	}
	if got := unbounded.Delay(200); got != time.Duration(math.MaxInt64) {
		t.Errorf("Delay(200) = %v, want max duration", got)
	}

	jittered := ExponentialBackoff{Base: 4 * time.Second, Jitter: 0.5, Rand: func() float64 { return 1 }}
	if got := jittered.Delay(1); got != 2*time.Second {
		t.Errorf("jittered delay = %v", got)
	}
}
