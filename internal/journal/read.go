package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Entry is a call joined with its settlement, if any.
type Entry struct {
	Call
	Result *Result `json:"result,omitempty"`
}

// Filter narrows Entries. Zero fields match everything.
type Filter struct {
	Session string
	Key     string
	Op      Op
}

// Entries returns journaled calls matching f.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Session != "" {
		where = append(where, "c.session = ?")
		args = append(args, f.Session)
	}
	if f.Key != "" {
		where = append(where, "c.key = ?")
		args = append(args, f.Key)
	}
	if f.Op != "" {
		where = append(where, "c.op = ?")
		args = append(args, string(f.Op))
	}

	query := `
		SELECT c.id, c.session, c.seq, c.op, c.key, c.payload, c.root,
		       r.seq, r.outcome, r.value, r.error
		FROM calls c
		LEFT JOIN results r ON r.call_id = c.id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY c.seq ASC, c.id COLLATE BINARY ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return entries, nil
}

// Sessions returns the distinct sessions in order of their first call.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session FROM calls
		GROUP BY session
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e         Entry
		op        string
		payload   string
		resSeq    sql.NullInt64
		outcome   sql.NullString
		value     sql.NullString
		errString sql.NullString
	)
	err := rows.Scan(&e.ID, &e.Session, &e.Seq, &op, &e.Key, &payload, &e.Root,
		&resSeq, &outcome, &value, &errString)
	if err != nil {
		return Entry{}, fmt.Errorf("scan call: %w", err)
	}
	e.Op = Op(op)
	e.Payload = []byte(payload)

	if outcome.Valid {
		e.Result = &Result{
			CallID:  e.ID,
			Seq:     resSeq.Int64,
			Outcome: Outcome(outcome.String),
			Error:   errString.String,
		}
		if value.String != "null" {
			e.Result.Value = []byte(value.String)
		}
	}
	return e, nil
}
