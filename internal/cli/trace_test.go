package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fluxkeys/internal/accessor"
	"github.com/roach88/fluxkeys/internal/config"
	"github.com/roach88/fluxkeys/internal/journal"
	"github.com/roach88/fluxkeys/internal/testutil"
)

type cartState struct{}

type lineItem struct {
	ID int `json:"id"`
}

func addItem(state *cartState, it lineItem) {}

func checkout(ctx context.Context, ac accessor.ActionContext, it lineItem) (string, error) {
	return "", nil
}

// seedJournal records two sessions: a commit plus a resolved dispatch, then
// a rejected dispatch and one nobody awaited.
func seedJournal(t *testing.T) (db string, first, second string) {
	t.Helper()

	db = filepath.Join(t.TempDir(), "calls.db")
	j, err := journal.Open(db)
	require.NoError(t, err)
	defer j.Close()

	cart := accessor.New[*cartState, any]("cart")
	add := accessor.Must(accessor.Commit(cart, addItem))
	check := accessor.Must(accessor.Dispatch(cart, checkout))
	ctx := context.Background()

	rec := testutil.NewRecorder(nil)
	rec.SetOutcome("cart/checkout", "order-1", nil)
	first = j.NewSession()
	store := accessor.FromStore(journal.WrapStore(rec.Store(), j, first))
	add(store, lineItem{ID: 1})
	_, err = check(store, lineItem{ID: 1}).Await(ctx)
	require.NoError(t, err)

	rejecting := testutil.NewRecorder(nil)
	rejecting.SetOutcome("cart/checkout", nil, errors.New("payment declined"))
	second = j.NewSession()
	actx := accessor.FromContext(journal.WrapContext(rejecting.Context(), j, second))
	_, err = check(actx, lineItem{ID: 2}).Await(ctx)
	require.Error(t, err)
	check(actx, lineItem{ID: 3})

	return db, first, second
}

func TestTrace_Text(t *testing.T) {
	db, first, second := seedJournal(t)

	out, _, err := execute(t, textConfig, "trace", "--db", db)
	require.NoError(t, err)

	assert.Contains(t, out, "Session "+first)
	assert.Contains(t, out, `commit   cart/addItem {"id":1}`)
	assert.Contains(t, out, `dispatch cart/checkout {"id":1} -> resolved "order-1"`)
	assert.Contains(t, out, "Session "+second)
	assert.Contains(t, out, `dispatch cart/checkout {"id":2} -> rejected: payment declined`)
	assert.Contains(t, out, `dispatch cart/checkout {"id":3} -> pending`)
	assert.Contains(t, out, "4 call(s): 1 commit(s), 3 dispatch(es) (1 resolved, 1 rejected, 1 pending)")
}

func TestTrace_JSONStatsAndGrouping(t *testing.T) {
	db, first, second := seedJournal(t)

	out, _, err := execute(t, textConfig, "--format", "json", "trace", "--db", db)
	require.NoError(t, err)

	var result TraceResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, first, result.Sessions[0].Session)
	assert.Equal(t, second, result.Sessions[1].Session)
	assert.Len(t, result.Sessions[0].Entries, 2)
	assert.Len(t, result.Sessions[1].Entries, 2)
	assert.Equal(t, TraceStats{Calls: 4, Commits: 1, Dispatches: 3, Resolved: 1, Rejected: 1, Pending: 1}, result.Stats)
}

func TestTrace_Filters(t *testing.T) {
	db, first, second := seedJournal(t)

	out, _, err := execute(t, textConfig, "--format", "json", "trace", "--db", db, "--session", second)
	require.NoError(t, err)
	var bySession TraceResult
	decodeResponse(t, out, &bySession)
	require.Len(t, bySession.Sessions, 1)
	assert.Equal(t, 2, bySession.Stats.Calls)

	out, _, err = execute(t, textConfig, "--format", "json", "trace", "--db", db, "--op", "commit")
	require.NoError(t, err)
	var byOp TraceResult
	decodeResponse(t, out, &byOp)
	require.Len(t, byOp.Sessions, 1)
	assert.Equal(t, first, byOp.Sessions[0].Session)
	assert.Equal(t, 1, byOp.Stats.Commits)

	out, _, err = execute(t, textConfig, "trace", "--db", db, "--key", "cart/removeItem")
	require.NoError(t, err)
	assert.Equal(t, "No calls found.\n", out)
}

func TestTrace_JournalFromConfig(t *testing.T) {
	db, first, _ := seedJournal(t)

	out, _, err := execute(t, config.Config{Format: "text", Journal: db}, "trace")
	require.NoError(t, err)
	assert.Contains(t, out, "Session "+first)
}

func TestTrace_NoJournal(t *testing.T) {
	_, _, err := execute(t, textConfig, "trace")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "pass --db or set FLUXKEYS_JOURNAL")
}

func TestTrace_MissingDatabase(t *testing.T) {
	_, _, err := execute(t, textConfig, "trace", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestTrace_InvalidOp(t *testing.T) {
	_, _, err := execute(t, textConfig, "trace", "--db", "x.db", "--op", "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid op "read"`)
}
