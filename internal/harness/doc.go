// Package harness runs accessor scenarios: YAML files that invoke generated
// accessors against a recording store and check what the store received.
//
// # Scenario Format
//
//	name: checkout
//	description: "Checkout commits through the cart namespace"
//	manifest: ../manifests/cart.yaml   # or inline `modules:`
//	target: context                    # store (default) or context
//	getters:
//	  cart/itemCount: 2
//	dispatch:
//	  cart/checkout: { value: order-1 }
//	steps:
//	  - op: commit
//	    handler: cart.addItem
//	    payload: { id: 1 }
//	  - op: dispatch
//	    handler: cart.checkout
//	    expect: { key: cart/checkout, value: order-1 }
//	  - op: read
//	    handler: cart.itemCount
//	    expect: { value: 2 }
//	assertions:
//	  - type: call_count
//	    key: cart/addItem
//	    count: 1
//	  - type: call_order
//	    keys: [cart/addItem, cart/checkout]
//	  - type: called_with
//	    key: cart/addItem
//	    payload: { id: 1 }
//
// Handlers are referenced as "<module>.<handler>", where module is the
// module name or its namespace. The handler must be declared in the
// manifest under the kind matching the step: mutations for commits, actions
// for dispatches, getters for reads.
//
// # Assertion Types
//
//   - call_count: key (optionally restricted to op) was called exactly N times
//   - call_order: keys were first called in the given order
//   - called_with: some call of key carried a matching payload (maps match as subsets)
//
// # Golden Files
//
// The trace of a run, one event per step, is stable across runs and can be
// compared against testdata/golden/<name>.golden with RunWithGolden.
package harness
