package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps real sleeps negligible in tests.
func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Microsecond,
		Multiplier:     2.0,
	}
}

func TestRunSuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Run(context.Background(), fastConfig(4), func(context.Context) Outcome[string] {
		calls++
		return Success("payload")
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 1, calls)
}

func TestRunValidationFailureNeverRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	retries := 0
	cfg := fastConfig(4)
	cfg.OnRetry = func(int, error) { retries++ }

	_, err := Run(context.Background(), cfg, func(context.Context) Outcome[string] {
		calls++
		return ValidationFailure[string](eris.New("malformed reply"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed reply")
	assert.Equal(t, 1, calls, "validation failure must abort on attempt 1")
	assert.Equal(t, 0, retries, "validation failure must not trigger a backoff sleep")
}

func TestRunTransientExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	var retriedAttempts []int
	cfg := fastConfig(4)
	cfg.OnRetry = func(attempt int, _ error) { retriedAttempts = append(retriedAttempts, attempt) }

	_, err := Run(context.Background(), cfg, func(context.Context) Outcome[int] {
		calls++
		return TransientFailure[int](eris.New("rate limited"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 4 attempts")
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 4, calls)
	// Exactly M-1 sleeps, one after each failed attempt except the last.
	assert.Equal(t, []int{1, 2, 3}, retriedAttempts)
}

func TestRunRecoversAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Run(context.Background(), fastConfig(3), func(context.Context) Outcome[int] {
		calls++
		if calls < 3 {
			return TransientFailure[int](eris.New("flaky"))
		}
		return Success(42)
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRunContextCancelDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, InitialBackoff: time.Hour, Multiplier: 2.0}

	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := Run(ctx, cfg, func(context.Context) Outcome[int] {
			calls++
			return TransientFailure[int](eris.New("down"))
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "down")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation during backoff")
	}
	assert.Equal(t, 1, calls)
}

func TestBackoffSchedules(t *testing.T) {
	t.Parallel()

	// Question generation: 1s base doubles as 1, 2, 4, 8.
	qg := Config{InitialBackoff: time.Second, Multiplier: 2.0}.withDefaults()
	assert.Equal(t, time.Second, backoffFor(qg, 1))
	assert.Equal(t, 2*time.Second, backoffFor(qg, 2))
	assert.Equal(t, 4*time.Second, backoffFor(qg, 3))
	assert.Equal(t, 8*time.Second, backoffFor(qg, 4))

	// Search: 2s base doubles as 2, 4, 8, 16.
	search := Config{InitialBackoff: 2 * time.Second, Multiplier: 2.0}.withDefaults()
	assert.Equal(t, 2*time.Second, backoffFor(search, 1))
	assert.Equal(t, 4*time.Second, backoffFor(search, 2))
	assert.Equal(t, 8*time.Second, backoffFor(search, 3))
	assert.Equal(t, 16*time.Second, backoffFor(search, 4))
}

func TestOutcomeAccessors(t *testing.T) {
	t.Parallel()

	s := Success(7)
	assert.Equal(t, StatusSuccess, s.Status())
	assert.NoError(t, s.Err())

	v := ValidationFailure[int](eris.New("bad"))
	assert.Equal(t, StatusValidationFailure, v.Status())
	assert.Error(t, v.Err())

	tr := TransientFailure[int](eris.New("flaky"))
	assert.Equal(t, StatusTransientFailure, tr.Status())
	assert.Error(t, tr.Err())
}
