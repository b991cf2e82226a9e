package accessor

import (
	"context"
	"fmt"
	"sync"
)

// Promise is the deferred result returned by a store's Dispatch.
type Promise interface {
	// Await blocks until the action settles or ctx is done.
	Await(ctx context.Context) (any, error)
}

// Deferred is a typed view over a store Promise.
type Deferred[T any] struct {
	key     string
	promise Promise
}

// Key returns the qualified key of the dispatched action.
func (d *Deferred[T]) Key() string {
	return d.key
}

// Await waits for the action to settle. Errors from the store are returned
// unchanged. A nil result yields the zero T.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if d.promise == nil {
		return zero, nil
	}
	v, err := d.promise.Await(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	res, ok := v.(T)
	if !ok {
		return zero, &ResultTypeError{
			Key:  d.key,
			Want: fmt.Sprintf("%T", zero),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return res, nil
}

// Resolved returns a Promise already settled with v.
func Resolved(v any) Promise {
	f := NewFuture()
	f.Resolve(v)
	return f
}

// Rejected returns a Promise already settled with err.
func Rejected(err error) Promise {
	f := NewFuture()
	f.Reject(err)
	return f
}

// Future is a Promise settled by the store runtime.
//
// Thread-safety: Resolve, Reject and Await may be called from any goroutine.
// Only the first settlement takes effect.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

// NewFuture returns an unsettled Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future with v.
func (f *Future) Resolve(v any) {
	f.settle(v, nil)
}

// Reject settles the future with err.
func (f *Future) Reject(err error) {
	f.settle(nil, err)
}

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Await implements Promise.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
