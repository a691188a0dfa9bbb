package keyspace

import (
	"context"
)

// Future is the pending result of an operation started with Async
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Async runs fn in its own goroutine and returns a future of its result.
// ctx is passed to fn; cancelling it is how the operation is abandoned
func Async[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done.
// Giving up on ctx does not cancel the operation itself
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
