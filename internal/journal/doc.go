// Package journal records the calls accessors forward to a store.
//
// The journal is an append-only SQLite log with two tables:
//   - calls: every Commit and Dispatch, in logical-clock order
//   - results: how each dispatched action settled
//
// WrapStore and WrapContext decorate a store handle so that every forwarded
// call is journaled before it reaches the store. Journaling never changes
// what the store receives or returns: write failures are logged and the
// call proceeds.
//
// # Ordering
//
// Calls are stamped with a monotonic sequence number from the journal's
// logical clock. Reads order by seq ASC, id ASC COLLATE BINARY so results
// are identical across runs. The clock resumes from MAX(seq) when an
// existing journal is reopened.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
