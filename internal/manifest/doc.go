// Package manifest describes the keys store modules register.
//
// A manifest lists, per module, the namespace and the names of its
// mutations, actions and getters. Keys() qualifies every name the same way
// the accessor package does, so tooling can list and validate the flat key
// space without running the store.
//
// Manifests are written in YAML:
//
//	modules:
//	  - namespace: cart
//	    mutations: [addItem, clear]
//	    actions: [checkout]
//	    getters: [total]
//
// or in CUE, where the namespace defaults to the module label:
//
//	module: cart: {
//		mutations: ["addItem", "clear"]
//		actions: ["checkout"]
//		getters: ["total"]
//	}
package manifest
