package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/storymesh/storymesh/logging"
)

// ExhaustedError is returned when all permitted attempts of an operation
// have failed. It carries the last underlying error and the total attempt
// count.
type ExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts. Last error: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error { return e.Err }

// Classifier decides whether a failure is retryable. A nil classifier
// treats every error as retryable.
type Classifier func(error) bool

// Observer is invoked before each backoff sleep with the failure and the
// 1-based attempt number. Observer panics are swallowed so a misbehaving
// callback can never mask the retry flow.
type Observer func(err error, attempt int)

// Policy is the reusable resilience configuration. The zero value is a
// disabled policy; use Default for the standard enabled configuration.
type Policy struct {
	// Enabled toggles retry semantics. When false, Do is a pure
	// passthrough: no timing, no catching.
	Enabled bool
	// MaxRetries is the number of re-attempts after the first try, so an
	// enabled policy makes MaxRetries+1 attempts total.
	MaxRetries int
	// InitialDelay seeds the exponential backoff.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration
	// ExponentialBase is the backoff growth factor.
	ExponentialBase float64
	// Retryable classifies failures; nil retries everything.
	Retryable Classifier
	// OnRetry is an optional observer invoked before each backoff sleep.
	OnRetry Observer
	// Logger receives retry/exhaustion records; nil disables logging.
	Logger logging.Logger
}

// Default returns the standard enabled policy: 3 retries, 1s initial
// delay, 60s cap, base 2.
func Default() *Policy {
	return &Policy{
		Enabled:         true,
		MaxRetries:      3,
		InitialDelay:    time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
	}
}

// Delay computes the backoff before the attempt following the given
// 0-indexed failed attempt: min(InitialDelay * ExponentialBase^attempt,
// MaxDelay).
func (p *Policy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.ExponentialBase, float64(attempt)))
	if d > p.MaxDelay || d < 0 {
		return p.MaxDelay
	}
	return d
}

func (p *Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func (p *Policy) logger() logging.Logger {
	if p.Logger == nil {
		return logging.NoOpLogger{}
	}
	return p.Logger
}

// Do runs op under the policy. name labels the operation in logs. The
// context bounds the backoff sleeps: cancellation during a sleep aborts
// with ctx.Err(). Exhaustion is reported as *ExhaustedError wrapping the
// last failure.
func (p *Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	if p == nil || !p.Enabled {
		return op(ctx)
	}

	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			p.logger().Error("retry exhausted", "operation", name, "attempts", attempt+1, "error", err.Error())
			return &ExhaustedError{Attempts: attempt + 1, Err: err}
		}

		delay := p.Delay(attempt)
		p.logger().Warn("retrying operation", "operation", name, "attempt", attempt+1, "delay", delay.String(), "error", err.Error())
		p.notify(err, attempt+1)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// notify invokes the observer, absorbing panics so observer failures never
// interfere with the retry loop.
func (p *Policy) notify(err error, attempt int) {
	if p.OnRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger().Debug("retry observer panic ignored", "panic", fmt.Sprint(r))
		}
	}()
	p.OnRetry(err, attempt)
}

// DoValue runs a value-returning operation under the policy. It mirrors Do
// for operations that produce a result.
func DoValue[T any](ctx context.Context, p *Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
