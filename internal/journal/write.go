package journal

import (
	"context"
	"encoding/json"
	"fmt"
)

// Op names a forwarded store operation.
type Op string

const (
	OpCommit   Op = "commit"
	OpDispatch Op = "dispatch"
)

// Outcome is how a dispatched action settled.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeRejected Outcome = "rejected"
)

// Call is one forwarded Commit or Dispatch.
type Call struct {
	ID      string          `json:"id"`
	Session string          `json:"session"`
	Seq     int64           `json:"seq"`
	Op      Op              `json:"op"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
	Root    bool            `json:"root"`
}

// Result is the settlement of a dispatched call.
type Result struct {
	CallID  string          `json:"call_id"`
	Seq     int64           `json:"seq"`
	Outcome Outcome         `json:"outcome"`
	Value   json.RawMessage `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Record appends c to the journal. Empty ID and zero Seq are filled in;
// the stored call is returned.
//
// Uses ON CONFLICT(id) DO NOTHING: re-recording an ID is a no-op and
// returns the call recorded first.
func (j *Journal) Record(ctx context.Context, c Call) (Call, error) {
	if c.ID == "" {
		c.ID = j.ids.Generate()
	}
	if c.Seq == 0 {
		c.Seq = j.clock.Next()
	}
	if len(c.Payload) == 0 {
		c.Payload = json.RawMessage("null")
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO calls (id, session, seq, op, key, payload, root)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, c.ID, c.Session, c.Seq, string(c.Op), c.Key, string(c.Payload), c.Root)
	if err != nil {
		return c, fmt.Errorf("record call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return c, fmt.Errorf("record call: %w", err)
	}
	if n == 0 {
		return j.call(ctx, c.ID)
	}
	return c, nil
}

// call reads one stored call by ID.
func (j *Journal) call(ctx context.Context, id string) (Call, error) {
	var (
		c       Call
		op      string
		payload string
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT id, session, seq, op, key, payload, root
		FROM calls WHERE id = ?
	`, id).Scan(&c.ID, &c.Session, &c.Seq, &op, &c.Key, &payload, &c.Root)
	if err != nil {
		return Call{}, fmt.Errorf("read call %s: %w", id, err)
	}
	c.Op = Op(op)
	c.Payload = json.RawMessage(payload)
	return c, nil
}

// Settle records how a dispatched call settled. A call settles once; later
// settlements are ignored.
//
// Note: the call referenced by CallID must exist (foreign key constraint).
func (j *Journal) Settle(ctx context.Context, r Result) (Result, error) {
	if r.Seq == 0 {
		r.Seq = j.clock.Next()
	}
	value := r.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO results (call_id, seq, outcome, value, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(call_id) DO NOTHING
	`, r.CallID, r.Seq, string(r.Outcome), string(value), r.Error)
	if err != nil {
		return r, fmt.Errorf("settle call %s: %w", r.CallID, err)
	}
	return r, nil
}

// MarshalPayload encodes v for the journal. Values JSON cannot represent
// are stored as their Go syntax representation in a JSON string.
func MarshalPayload(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%#v", v))
	}
	return data
}
