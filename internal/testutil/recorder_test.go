package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fluxkeys/internal/accessor"
)

func TestRecorder_ViewsShareCallLog(t *testing.T) {
	rec := NewRecorder(nil)

	rec.Store().Commit("cart/addItem", 1, accessor.Options{Root: true})
	rec.Context().Commit("cart/clear", nil, accessor.Options{})

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, Call{Op: "commit", Key: "cart/addItem", Payload: 1, Options: accessor.Options{Root: true}}, calls[0])
	assert.Equal(t, "cart/clear", calls[1].Key)
}

func TestRecorder_DispatchOutcomes(t *testing.T) {
	rec := NewRecorder(nil)
	boom := errors.New("boom")
	rec.SetOutcome("cart/checkout", "order-1", nil)
	rec.SetOutcome("cart/fail", nil, boom)
	ctx := context.Background()

	v, err := rec.Store().Dispatch("cart/checkout", nil, accessor.Options{}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-1", v)

	_, err = rec.Store().Dispatch("cart/fail", nil, accessor.Options{}).Await(ctx)
	assert.ErrorIs(t, err, boom)

	v, err = rec.Context().Dispatch("cart/unknown", nil, accessor.Options{}).Await(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRecorder_GetterTablesAreCopies(t *testing.T) {
	src := map[string]any{"cart/total": 5}
	rec := NewRecorder(src)
	src["cart/total"] = 6

	table := rec.Store().Getters()
	assert.Equal(t, 5, table["cart/total"])
	table["cart/total"] = 7
	assert.Equal(t, 5, rec.Context().RootGetters()["cart/total"])
}

func TestRecorder_Reset(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Store().Commit("k", nil, accessor.Options{})
	rec.Reset()
	assert.Empty(t, rec.Calls())
}
