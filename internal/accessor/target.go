package accessor

import "fmt"

// Options are passed to every forwarded Commit and Dispatch call.
type Options struct {
	// Root makes the store treat the key as already fully qualified,
	// bypassing the namespace of the context the call is made from.
	Root bool
}

var useRootNamespace = Options{Root: true}

// Committer is the store's untyped mutation entry point.
type Committer interface {
	Commit(key string, payload any, opts Options)
}

// Dispatcher is the store's untyped action entry point.
type Dispatcher interface {
	Dispatch(key string, payload any, opts Options) Promise
}

// Store is the top-level store handle.
type Store interface {
	Committer
	Dispatcher
	Getters() map[string]any
}

// ActionContext is the scoped handle passed into an action body.
type ActionContext interface {
	Committer
	Dispatcher
	RootGetters() map[string]any
}

// Target is the handle an accessor is invoked against. It is either a
// StoreTarget or a ContextTarget; no other implementations exist.
type Target interface {
	Committer
	Dispatcher
	isTarget()
}

// StoreTarget is a Target backed by the top-level store.
type StoreTarget struct {
	Store
}

func (StoreTarget) isTarget() {}

// ContextTarget is a Target backed by an action context.
type ContextTarget struct {
	ActionContext
}

func (ContextTarget) isTarget() {}

// FromStore wraps the top-level store as a Target.
func FromStore(s Store) Target {
	return StoreTarget{Store: s}
}

// FromContext wraps an action context as a Target.
func FromContext(ac ActionContext) Target {
	return ContextTarget{ActionContext: ac}
}

// TargetOf classifies v by the methods it exposes. A value exposing
// RootGetters is treated as an action context even if it also exposes
// Getters. It returns false when v is neither shape.
func TargetOf(v any) (Target, bool) {
	switch t := v.(type) {
	case Target:
		return t, true
	case ActionContext:
		return FromContext(t), true
	case Store:
		return FromStore(t), true
	}
	return nil, false
}

// getters returns the getter table visible through t. Types embedding a
// StoreTarget or ContextTarget are classified by the methods they expose,
// RootGetters first.
func getters(t Target) map[string]any {
	switch t := t.(type) {
	case ContextTarget:
		return t.RootGetters()
	case StoreTarget:
		return t.Getters()
	case interface{ RootGetters() map[string]any }:
		return t.RootGetters()
	case interface{ Getters() map[string]any }:
		return t.Getters()
	case nil:
		panic("accessor: nil Target")
	}
	panic(fmt.Sprintf("accessor: Target %T exposes no getter table", t))
}
