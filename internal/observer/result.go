// Package observer delivers the outcome of an asynchronous SDK operation.
//
// An operation started with Go produces exactly one Result on a buffered
// channel which is then closed. Callers tell success from failure with
// Failed; Value is the zero value whenever the result failed.
package observer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Kind tags which operation produced a Result.
type Kind string

const (
	KindCreateShout   Kind = "create_shout"
	KindUpdateUser    Kind = "update_user"
	KindSubscriptions Kind = "subscriptions"
	KindSubscribe     Kind = "subscribe"
)

// Result is the single outcome of an asynchronous operation.
type Result[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Failed reports whether the operation failed.
func (r Result[T]) Failed() bool { return r.Err != nil }

// ErrorMessage returns the failure message, or "" on success.
func (r Result[T]) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Succeed builds a successful result.
func Succeed[T any](kind Kind, v T) Result[T] {
	return Result[T]{Kind: kind, Value: v}
}

// Fail builds a failed result. Value is left at its zero value.
func Fail[T any](kind Kind, err error) Result[T] {
	return Result[T]{Kind: kind, Err: err}
}

// Go runs fn on its own goroutine. The returned channel receives exactly one
// Result and is then closed. A panic in fn is reported as a failed result.
// If ctx is already done when fn returns, the result still carries fn's
// outcome; cancellation is fn's business.
func Go[T any](ctx context.Context, kind Kind, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		ch <- run(ctx, kind, fn)
	}()
	return ch
}

func run[T any](ctx context.Context, kind Kind, fn func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("kind", string(kind)).Interface("panic", p).Msg("async operation panicked")
			res = Fail[T](kind, fmt.Errorf("%s: panic: %v", kind, p))
		}
	}()
	v, err := fn(ctx)
	if err != nil {
		return Fail[T](kind, err)
	}
	return Succeed(kind, v)
}

// Then calls cb exactly once, on a background goroutine, with the result
// read from ch. If ch closes without a value cb is not called.
func Then[T any](ch <-chan Result[T], cb func(Result[T])) {
	go func() {
		if r, ok := <-ch; ok {
			cb(r)
		}
	}()
}

// Wait blocks until ch yields its result or ctx is done.
func Wait[T any](ctx context.Context, ch <-chan Result[T]) (Result[T], error) {
	select {
	case r, ok := <-ch:
		if !ok {
			return Result[T]{}, fmt.Errorf("observer: result channel closed without a value")
		}
		return r, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}
