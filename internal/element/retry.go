// internal/element/retry.go
package element

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds a poll loop: at most Attempts probes, Interval apart.
type Policy struct {
	Attempts int
	Interval time.Duration
}

var (
	// DefaultExistencePolicy governs the raw candidate query.
	DefaultExistencePolicy = Policy{Attempts: 3}
	// DefaultResolutionPolicy governs every filter strategy.
	DefaultResolutionPolicy = Policy{Attempts: 20, Interval: 250 * time.Millisecond}
	// DefaultClickPolicy governs click retries on interception.
	DefaultClickPolicy = Policy{Attempts: 10, Interval: time.Second}
)

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// -- Probe outcomes --

type outcome int

const (
	outcomeFound outcome = iota
	outcomeNotFoundYet
	outcomeFatal
)

// probeResult is what a single attempt reports back to the poll loop.
type probeResult[T any] struct {
	outcome outcome
	value   T
	err     error
}

func found[T any](v T) probeResult[T] {
	return probeResult[T]{outcome: outcomeFound, value: v}
}

// notFoundYet carries the reason for the miss, which may be nil.
func notFoundYet[T any](reason error) probeResult[T] {
	return probeResult[T]{outcome: outcomeNotFoundYet, err: reason}
}

func fatal[T any](err error) probeResult[T] {
	return probeResult[T]{outcome: outcomeFatal, err: err}
}

// classify maps an error seen inside a probe onto an outcome. Missing and
// detached nodes are worth another look; anything else is the caller's problem.
func classify[T any](err error) probeResult[T] {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoSuchElement),
		errors.Is(err, ErrStaleElement):
		return notFoundYet[T](err)
	default:
		return fatal[T](err)
	}
}

// exhaustedError is returned by poll when every attempt missed.
type exhaustedError struct {
	attempts int
	last     error
}

func (e *exhaustedError) Error() string {
	if e.last == nil {
		return fmt.Sprintf("gave up after %d attempts", e.attempts)
	}
	return fmt.Sprintf("gave up after %d attempts: %v", e.attempts, e.last)
}

func (e *exhaustedError) Unwrap() error { return e.last }

// poll runs probe until it reports found or fatal, or the policy runs out.
// onMiss is told about every miss before the loop sleeps.
func poll[T any](
	ctx context.Context,
	p Policy,
	sleep SleepFunc,
	probe func(ctx context.Context, attempt int) probeResult[T],
	onMiss func(attempt int, reason error),
) (T, error) {
	var zero T
	attempts := p.attempts()
	var last error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res := probe(ctx, attempt)
		switch res.outcome {
		case outcomeFound:
			return res.value, nil
		case outcomeFatal:
			return zero, res.err
		}

		last = res.err
		if onMiss != nil {
			onMiss(attempt, res.err)
		}
		if attempt < attempts {
			if err := sleep(ctx, p.Interval); err != nil {
				return zero, err
			}
		}
	}
	return zero, &exhaustedError{attempts: attempts, last: last}
}

func isExhausted(err error) bool {
	var ex *exhaustedError
	return errors.As(err, &ex)
}
