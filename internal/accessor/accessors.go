package accessor

import (
	"context"
	"log/slog"
)

// Mutation is a synchronous state change taking a payload.
type Mutation[S, P any] func(state S, payload P)

// PayloadlessMutation is a synchronous state change without a payload.
type PayloadlessMutation[S any] func(state S)

// Action is an asynchronous operation taking a payload. S and R tie the
// handler to the module and root state it was written against.
type Action[S, R, P, T any] func(ctx context.Context, ac ActionContext, payload P) (T, error)

// PayloadlessAction is an asynchronous operation without a payload.
type PayloadlessAction[S, R, T any] func(ctx context.Context, ac ActionContext) (T, error)

// Getter derives a value from module and root state.
type Getter[S, R, T any] func(state S, rootState R) T

// CommitFunc commits a mutation with a payload.
type CommitFunc[P any] func(t Target, payload P)

// PayloadlessCommitFunc commits a mutation without a payload.
type PayloadlessCommitFunc func(t Target)

// DispatchFunc dispatches an action with a payload.
type DispatchFunc[P, T any] func(t Target, payload P) *Deferred[T]

// PayloadlessDispatchFunc dispatches an action without a payload.
type PayloadlessDispatchFunc[T any] func(t Target) *Deferred[T]

// ReadFunc reads a getter value.
type ReadFunc[T any] func(t Target) T

// ModuleOption configures Accessors.
type ModuleOption func(*moduleConfig)

type moduleConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report bound keys.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) ModuleOption {
	return func(c *moduleConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Accessors builds accessors for one store module. S is the module state
// type and R the root state type.
//
// An Accessors value holds only its namespace and is safe for concurrent use.
type Accessors[S, R any] struct {
	namespace string
	logger    *slog.Logger
}

// New returns the accessor factory for the module registered under namespace.
// An empty namespace addresses the root module.
func New[S, R any](namespace string, opts ...ModuleOption) *Accessors[S, R] {
	cfg := moduleConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Accessors[S, R]{namespace: namespace, logger: cfg.logger}
}

// Namespace returns the module namespace.
func (a *Accessors[S, R]) Namespace() string {
	return a.namespace
}

// Key resolves the qualified key of handler within this module.
func (a *Accessors[S, R]) Key(handler any, opts ...Option) (string, error) {
	return Resolve(handler, a.namespace, opts...)
}

func (a *Accessors[S, R]) bind(kind string, handler any, opts []Option) (string, error) {
	key, err := a.Key(handler, opts...)
	if err != nil {
		return "", err
	}
	a.logger.Debug("accessor bound", "kind", kind, "key", key)
	return key, nil
}

// Commit returns an accessor committing h's mutation.
func Commit[S, R, P any](a *Accessors[S, R], h Mutation[S, P], opts ...Option) (CommitFunc[P], error) {
	key, err := a.bind("commit", h, opts)
	if err != nil {
		return nil, err
	}
	return func(t Target, payload P) {
		t.Commit(key, payload, useRootNamespace)
	}, nil
}

// CommitNoPayload returns an accessor committing h's mutation with a nil payload.
func CommitNoPayload[S, R any](a *Accessors[S, R], h PayloadlessMutation[S], opts ...Option) (PayloadlessCommitFunc, error) {
	key, err := a.bind("commit", h, opts)
	if err != nil {
		return nil, err
	}
	return func(t Target) {
		t.Commit(key, nil, useRootNamespace)
	}, nil
}

// Dispatch returns an accessor dispatching h's action.
func Dispatch[S, R, P, T any](a *Accessors[S, R], h Action[S, R, P, T], opts ...Option) (DispatchFunc[P, T], error) {
	key, err := a.bind("dispatch", h, opts)
	if err != nil {
		return nil, err
	}
	return func(t Target, payload P) *Deferred[T] {
		return &Deferred[T]{key: key, promise: t.Dispatch(key, payload, useRootNamespace)}
	}, nil
}

// DispatchNoPayload returns an accessor dispatching h's action with a nil payload.
func DispatchNoPayload[S, R, T any](a *Accessors[S, R], h PayloadlessAction[S, R, T], opts ...Option) (PayloadlessDispatchFunc[T], error) {
	key, err := a.bind("dispatch", h, opts)
	if err != nil {
		return nil, err
	}
	return func(t Target) *Deferred[T] {
		return &Deferred[T]{key: key, promise: t.Dispatch(key, nil, useRootNamespace)}
	}, nil
}

// Read returns an accessor reading h's getter. Action contexts are read
// through RootGetters, the store through Getters. A missing entry, or one
// of another type, yields the zero T.
func Read[S, R, T any](a *Accessors[S, R], h Getter[S, R, T], opts ...Option) (ReadFunc[T], error) {
	key, err := a.bind("read", h, opts)
	if err != nil {
		return nil, err
	}
	return func(t Target) T {
		v, _ := getters(t)[key].(T)
		return v
	}, nil
}

// Must returns f, panicking if err is non-nil. It is meant for package-level
// accessor declarations:
//
//	var AddItem = accessor.Must(accessor.Commit(cart, addItem))
func Must[F any](f F, err error) F {
	if err != nil {
		panic(err)
	}
	return f
}
