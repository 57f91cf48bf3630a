package element

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll(t *testing.T) {
	boom := errors.New("boom")
	policy := Policy{Attempts: 4, Interval: 10 * time.Millisecond}

	t.Run("Found Immediately", func(t *testing.T) {
		rec := &recordingSleep{}
		got, err := poll(context.Background(), policy, rec.sleep,
			func(ctx context.Context, attempt int) probeResult[int] { return found(attempt) }, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
		assert.Zero(t, rec.count())
	})

	t.Run("Found On Third Attempt", func(t *testing.T) {
		rec := &recordingSleep{}
		var misses []int
		got, err := poll(context.Background(), policy, rec.sleep,
			func(ctx context.Context, attempt int) probeResult[int] {
				if attempt < 3 {
					return notFoundYet[int](nil)
				}
				return found(attempt * 10)
			},
			func(attempt int, reason error) { misses = append(misses, attempt) })
		require.NoError(t, err)
		assert.Equal(t, 30, got)
		assert.Equal(t, []int{1, 2}, misses)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, rec.delays)
	})

	t.Run("Fatal Stops Loop", func(t *testing.T) {
		rec := &recordingSleep{}
		calls := 0
		_, err := poll(context.Background(), policy, rec.sleep,
			func(ctx context.Context, attempt int) probeResult[int] {
				calls++
				return fatal[int](boom)
			}, nil)
		assert.Same(t, boom, err)
		assert.Equal(t, 1, calls)
		assert.Zero(t, rec.count())
	})

	t.Run("Exhausted Keeps Last Reason", func(t *testing.T) {
		rec := &recordingSleep{}
		calls := 0
		_, err := poll(context.Background(), policy, rec.sleep,
			func(ctx context.Context, attempt int) probeResult[int] {
				calls++
				return notFoundYet[int](boom)
			}, nil)
		require.Error(t, err)
		assert.True(t, isExhausted(err))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 4, calls)
		// No wait after the final attempt.
		assert.Equal(t, 3, rec.count())
	})

	t.Run("Zero Attempts Runs Once", func(t *testing.T) {
		calls := 0
		_, err := poll(context.Background(), Policy{}, sleepContext,
			func(ctx context.Context, attempt int) probeResult[int] {
				calls++
				return notFoundYet[int](nil)
			}, nil)
		assert.True(t, isExhausted(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("Cancelled During Sleep", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := poll(ctx, Policy{Attempts: 5, Interval: time.Hour}, sleepContext,
			func(ctx context.Context, attempt int) probeResult[int] {
				calls++
				cancel()
				return notFoundYet[int](nil)
			}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, isExhausted(err))
		assert.Equal(t, 1, calls)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected outcome
	}{
		{"Not Found", &NotFoundError{Selector: "div"}, outcomeNotFoundYet},
		{"No Such Element", ErrNoSuchElement, outcomeNotFoundYet},
		{"Stale Wrapped", errors.Join(errors.New("node 7"), ErrStaleElement), outcomeNotFoundYet},
		{"Index", &IndexError{Selector: "td", Index: 2, Len: 1}, outcomeFatal},
		{"Session", errors.New("invalid session id"), outcomeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify[int](tt.err).outcome)
		})
	}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
