package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_AppliesPragmas(t *testing.T) {
	j := createTestJournal(t)

	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, j.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestOpen_ResumesClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j1, err := Open(path)
	require.NoError(t, err)
	c, err := j1.Record(ctx, Call{Session: "s", Op: OpDispatch, Key: "cart/checkout"})
	require.NoError(t, err)
	_, err = j1.Settle(ctx, Result{CallID: c.ID, Outcome: OutcomeResolved})
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	assert.Equal(t, int64(2), j2.Seq())
	c2, err := j2.Record(ctx, Call{Session: "s", Op: OpCommit, Key: "cart/clear"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c2.Seq)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestRecord_FillsIDSeqAndPayload(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	c, err := j.Record(ctx, Call{Session: "s1", Op: OpCommit, Key: "cart/addItem", Root: true})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, int64(1), c.Seq)
	assert.JSONEq(t, "null", string(c.Payload))

	entries, err := j.Entries(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, c, entries[0].Call)
	assert.Nil(t, entries[0].Result)
}

func TestRecord_DuplicateIDIsNoop(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first, err := j.Record(ctx, Call{ID: "c1", Session: "s", Op: OpCommit, Key: "a"})
	require.NoError(t, err)
	again, err := j.Record(ctx, Call{ID: "c1", Session: "s", Op: OpCommit, Key: "b"})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	entries, err := j.Entries(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Key)
}

func TestSettle_OnlyFirstCounts(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	c, err := j.Record(ctx, Call{Session: "s", Op: OpDispatch, Key: "cart/checkout"})
	require.NoError(t, err)
	_, err = j.Settle(ctx, Result{CallID: c.ID, Outcome: OutcomeResolved, Value: json.RawMessage(`"order-1"`)})
	require.NoError(t, err)
	_, err = j.Settle(ctx, Result{CallID: c.ID, Outcome: OutcomeRejected, Error: "late"})
	require.NoError(t, err)

	entries, err := j.Entries(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Result)
	assert.Equal(t, OutcomeResolved, entries[0].Result.Outcome)
	assert.JSONEq(t, `"order-1"`, string(entries[0].Result.Value))
}

func TestSettle_UnknownCallFails(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.Settle(context.Background(), Result{CallID: "missing", Outcome: OutcomeResolved})
	assert.Error(t, err)
}

func TestEntries_FiltersAndOrders(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	for _, c := range []Call{
		{Session: "s1", Op: OpCommit, Key: "cart/addItem"},
		{Session: "s2", Op: OpCommit, Key: "cart/addItem"},
		{Session: "s1", Op: OpDispatch, Key: "cart/checkout"},
		{Session: "s1", Op: OpCommit, Key: "cart/clear"},
	} {
		_, err := j.Record(ctx, c)
		require.NoError(t, err)
	}

	s1, err := j.Entries(ctx, Filter{Session: "s1"})
	require.NoError(t, err)
	require.Len(t, s1, 3)
	assert.Equal(t, []string{"cart/addItem", "cart/checkout", "cart/clear"}, keysOf(s1))

	adds, err := j.Entries(ctx, Filter{Key: "cart/addItem"})
	require.NoError(t, err)
	assert.Len(t, adds, 2)

	dispatches, err := j.Entries(ctx, Filter{Session: "s1", Op: OpDispatch})
	require.NoError(t, err)
	assert.Equal(t, []string{"cart/checkout"}, keysOf(dispatches))

	none, err := j.Entries(ctx, Filter{Session: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSessions_FirstSeenOrder(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	for _, s := range []string{"b", "a", "b", "c"} {
		_, err := j.Record(ctx, Call{Session: s, Op: OpCommit, Key: "k"})
		require.NoError(t, err)
	}

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, sessions)
}

func TestMarshalPayload(t *testing.T) {
	assert.JSONEq(t, `{"ID":1}`, string(MarshalPayload(struct{ ID int }{ID: 1})))
	assert.JSONEq(t, "null", string(MarshalPayload(nil)))

	ch := make(chan int)
	var s string
	require.NoError(t, json.Unmarshal(MarshalPayload(ch), &s))
	assert.Contains(t, s, "chan int")
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClockAt(5)
	assert.Equal(t, int64(5), c.Current())
	assert.Equal(t, int64(6), c.Next())
	assert.Equal(t, int64(7), c.Next())
}

func keysOf(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
