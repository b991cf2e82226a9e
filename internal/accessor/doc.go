// Package accessor generates typed accessors for a namespaced flux-style store.
//
// A store runtime registers mutations, actions and getters under keys of the
// form "<namespace>/<name>" and exposes untyped Commit, Dispatch and getter
// lookups. This package turns a handler function plus its module namespace
// into a statically typed function value that forwards to those untyped
// operations.
//
// # Keys
//
// The key of a handler is its declared Go name (FuncName). Function literals
// have no declared name; they must be given one with WithName when the
// accessor is built:
//
//	var cart = accessor.New[*CartState, *RootState]("cart")
//
//	func addItem(state *CartState, item Item) { ... }
//
//	var AddItem = accessor.Must(accessor.Commit(cart, addItem))
//	var Clear = accessor.Must(accessor.CommitNoPayload(cart,
//	    mutations.Clear, accessor.WithName("clear")))
//
// Keys are resolved once, when the accessor is built. A handler with no
// identity fails there with AnonymousHandlerError instead of on first use.
//
// # Targets
//
// Accessors run against either the top-level store or the action context
// handed to an action body. Both are wrapped in the Target variant:
//
//	AddItem(accessor.FromStore(store), Item{ID: 1})
//	total := Total(accessor.FromContext(ac))
//
// Every forwarded call passes Options{Root: true}, so the key is treated as
// already qualified regardless of which module's context made the call.
package accessor
