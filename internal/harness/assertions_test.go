package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCalls() []CallRecord {
	return []CallRecord{
		{Op: "commit", Key: "cart/addItem", Payload: map[string]any{"id": 1, "qty": 2}, Root: true},
		{Op: "dispatch", Key: "cart/checkout", Root: true},
		{Op: "commit", Key: "cart/addItem", Payload: map[string]any{"id": 2}, Root: true},
		{Op: "commit", Key: "cart/clearCart", Root: true},
	}
}

func TestAssertCallCount(t *testing.T) {
	calls := sampleCalls()

	assert.NoError(t, assertCallCount(calls, Assertion{Key: "cart/addItem", Count: 2}))
	assert.NoError(t, assertCallCount(calls, Assertion{Key: "cart/addItem", Op: "dispatch", Count: 0}))
	assert.NoError(t, assertCallCount(calls, Assertion{Key: "cart/missing", Count: 0}))

	err := assertCallCount(calls, Assertion{Key: "cart/checkout", Op: "dispatch", Count: 2})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertCallCount, ae.Type)
	assert.Equal(t, "2 calls of dispatch cart/checkout", ae.Expected)
	assert.Equal(t, "1 calls", ae.Actual)
}

func TestAssertCallOrder(t *testing.T) {
	calls := sampleCalls()

	assert.NoError(t, assertCallOrder(calls, Assertion{Keys: []string{"cart/addItem", "cart/clearCart"}}))
	assert.NoError(t, assertCallOrder(calls, Assertion{Keys: []string{"cart/addItem", "cart/checkout", "cart/clearCart"}}))

	err := assertCallOrder(calls, Assertion{Keys: []string{"cart/checkout", "cart/addItem"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart/checkout (pos 2) should be before cart/addItem (pos 1)")

	err = assertCallOrder(calls, Assertion{Keys: []string{"cart/addItem", "cart/reset"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never called: cart/reset")
}

func TestAssertCalledWith(t *testing.T) {
	calls := sampleCalls()

	assert.NoError(t, assertCalledWith(calls, Assertion{Key: "cart/addItem", Payload: map[string]any{"id": 2}}))
	assert.NoError(t, assertCalledWith(calls, Assertion{Key: "cart/addItem", Payload: map[string]any{"qty": 2}}))
	assert.NoError(t, assertCalledWith(calls, Assertion{Key: "cart/checkout"}))

	err := assertCalledWith(calls, Assertion{Key: "cart/addItem", Payload: map[string]any{"id": 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching call")
}

func TestMatchPayload(t *testing.T) {
	nested := map[string]any{
		"item": map[string]any{"id": 1, "tags": []any{"a", "b"}},
		"qty":  2,
	}

	assert.True(t, matchPayload(nested, nil))
	assert.True(t, matchPayload(nested, map[string]any{"item": map[string]any{"id": 1}}))
	assert.True(t, matchPayload(nested, map[string]any{"item": map[string]any{"tags": []any{"a", "b"}}}))
	assert.False(t, matchPayload(nested, map[string]any{"item": map[string]any{"tags": []any{"a"}}}))
	assert.False(t, matchPayload(nested, map[string]any{"missing": 1}))
	assert.False(t, matchPayload("sku-1", map[string]any{"id": 1}))
	assert.True(t, matchPayload("sku-1", "sku-1"))
	assert.False(t, matchPayload(1, "1"))
}

func TestAssertionError_ListsCalls(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCallCount,
		Expected: "1 calls of cart/addItem",
		Actual:   "0 calls",
		Calls:    []CallRecord{{Op: "commit", Key: "cart/clearCart"}},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: call_count")
	assert.Contains(t, msg, "Expected: 1 calls of cart/addItem")
	assert.Contains(t, msg, "[1] commit cart/clearCart")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Calls = sampleCalls()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertCallCount, Key: "cart/addItem", Count: 2},
		{Type: AssertCallOrder, Keys: []string{"cart/clearCart", "cart/addItem"}},
		{Type: "final_state"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "call_order")
	assert.Contains(t, errs[1], `unknown assertion type "final_state"`)
}
