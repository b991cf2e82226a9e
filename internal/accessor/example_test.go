package accessor_test

import (
	"context"
	"fmt"

	"github.com/roach88/fluxkeys/internal/accessor"
	"github.com/roach88/fluxkeys/internal/testutil"
)

func Example() {
	cart := accessor.New[*cartState, *rootState]("cart")

	add := accessor.Must(accessor.Commit(cart, addItem))
	check := accessor.Must(accessor.Dispatch(cart, checkout))
	count := accessor.Must(accessor.Read(cart, itemCount))

	rec := testutil.NewRecorder(map[string]any{"cart/itemCount": 1})
	rec.SetOutcome("cart/checkout", "order-1", nil)
	store := accessor.FromStore(rec.Store())

	add(store, item{ID: 1})
	order, _ := check(store, item{ID: 1}).Await(context.Background())

	for _, c := range rec.Calls() {
		fmt.Println(c.Op, c.Key, c.Options.Root)
	}
	fmt.Println(order, count(store))
	// Output:
	// commit cart/addItem true
	// dispatch cart/checkout true
	// order-1 1
}
