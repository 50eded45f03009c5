// Package resilience drives bounded retries around unreliable remote calls.
//
// A single attempt reports its result as a tagged Outcome rather than a bare
// error, so the retry driver can branch exhaustively: success returns,
// validation failures abort without retrying, and transient failures are
// retried with exponential backoff up to the attempt bound.
package resilience

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Status tags the result of a single attempt.
type Status int

const (
	// StatusSuccess means the attempt produced a payload.
	StatusSuccess Status = iota
	// StatusValidationFailure means the attempt failed in a way retrying
	// cannot fix (malformed output, schema mismatch, bad configuration).
	StatusValidationFailure
	// StatusTransientFailure means the attempt hit a fault that may clear
	// on its own (network, rate limit, provider-side error).
	StatusTransientFailure
)

// Outcome is the tagged result of one attempt.
type Outcome[T any] struct {
	status  Status
	payload T
	err     error
}

// Success wraps a payload as a successful outcome.
func Success[T any](payload T) Outcome[T] {
	return Outcome[T]{status: StatusSuccess, payload: payload}
}

// ValidationFailure marks an attempt as terminally failed; Run surfaces the
// error immediately without sleeping or retrying.
func ValidationFailure[T any](err error) Outcome[T] {
	return Outcome[T]{status: StatusValidationFailure, err: err}
}

// TransientFailure marks an attempt as retryable.
func TransientFailure[T any](err error) Outcome[T] {
	return Outcome[T]{status: StatusTransientFailure, err: err}
}

// Status returns the outcome's tag.
func (o Outcome[T]) Status() Status { return o.status }

// Err returns the outcome's error, nil for success.
func (o Outcome[T]) Err() error { return o.err }

// Config controls the retry driver. The backoff before retry n is
// InitialBackoff × Multiplier^(n-1), so the two orchestrators reproduce their
// distinct schedules purely through InitialBackoff (1s vs 2s).
type Config struct {
	// MaxAttempts is the total number of attempts including the first.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay after the first failed attempt.
	// Default: 1s.
	InitialBackoff time.Duration

	// Multiplier scales the backoff after each attempt. Default: 2.0.
	Multiplier float64

	// OnRetry is called before each backoff sleep with the attempt number
	// that just failed and its error.
	OnRetry func(attempt int, err error)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	return c
}

// Run executes fn up to cfg.MaxAttempts times. Success returns the payload
// immediately; a validation failure returns its error without retrying; a
// transient failure sleeps and retries until attempts are exhausted, then
// returns the last error wrapped with the attempt count. The backoff sleep
// waits on the call's own timer selected against ctx, so concurrent runs
// never interfere and cancellation interrupts the wait.
func Run[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) Outcome[T]) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		out := fn(ctx)
		switch out.status {
		case StatusSuccess:
			return out.payload, nil
		case StatusValidationFailure:
			return zero, out.err
		}
		lastErr = out.err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		timer := time.NewTimer(backoffFor(cfg, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, eris.Wrapf(lastErr, "failed after %d attempts", cfg.MaxAttempts)
}

// backoffFor computes the delay after the given failed attempt (1-based).
func backoffFor(cfg Config, attempt int) time.Duration {
	return time.Duration(float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt-1)))
}

// RetryLogger returns an OnRetry callback that logs each retry boundary.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Bool("transient", IsTransient(err)),
			zap.Error(err),
		)
	}
}
