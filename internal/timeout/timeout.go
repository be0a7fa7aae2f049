// Package timeout bounds calls to external collaborators.
package timeout

import (
	"context"
	"time"
)

type result[T any] struct {
	value T
	err   error
}

// Call runs fn with a context that expires after d and returns as soon as
// either fn completes or the deadline passes, even if fn ignores its context.
// On expiry the returned error is context.DeadlineExceeded (or the parent's
// cancellation cause) and fn's eventual result is discarded.
// A non-positive d only applies the parent context.
func Call[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx := ctx
	cancel := func() {}
	if d > 0 {
		callCtx, cancel = context.WithTimeout(ctx, d)
	}
	defer cancel()

	// buffered so a late fn never blocks forever on send
	done := make(chan result[T], 1)
	go func() {
		v, err := fn(callCtx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-callCtx.Done():
		var zero T
		return zero, callCtx.Err()
	}
}
