package testutil

import (
	"maps"
	"sync"

	"github.com/roach88/fluxkeys/internal/accessor"
)

// Call is one untyped operation received by a Recorder.
type Call struct {
	Op      string // "commit" or "dispatch"
	Key     string
	Payload any
	Options accessor.Options
}

// Outcome is the canned settlement of a dispatched key.
type Outcome struct {
	Value any
	Err   error
}

// Recorder is an in-memory stand-in for a store runtime. It records every
// Commit and Dispatch it receives and serves a fixed getter table.
//
// The same Recorder can be viewed as the top-level store (Store) or as an
// action context (Context); both views share one call log.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	getters  map[string]any
	outcomes map[string]Outcome
}

// NewRecorder creates a Recorder serving the given getter values.
func NewRecorder(getters map[string]any) *Recorder {
	r := &Recorder{
		getters:  make(map[string]any),
		outcomes: make(map[string]Outcome),
	}
	maps.Copy(r.getters, getters)
	return r
}

// SetOutcome makes dispatches of key settle with value and err.
// Keys without an outcome resolve to nil.
func (r *Recorder) SetOutcome(key string, value any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[key] = Outcome{Value: value, Err: err}
}

// Calls returns a copy of the recorded calls in arrival order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset clears the call log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Store returns the top-level store view.
func (r *Recorder) Store() accessor.Store {
	return storeView{r}
}

// Context returns the action context view.
func (r *Recorder) Context() accessor.ActionContext {
	return contextView{r}
}

func (r *Recorder) commit(key string, payload any, opts accessor.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "commit", Key: key, Payload: payload, Options: opts})
}

func (r *Recorder) dispatch(key string, payload any, opts accessor.Options) accessor.Promise {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "dispatch", Key: key, Payload: payload, Options: opts})
	out := r.outcomes[key]
	if out.Err != nil {
		return accessor.Rejected(out.Err)
	}
	return accessor.Resolved(out.Value)
}

func (r *Recorder) table() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.getters)
}

type storeView struct{ r *Recorder }

func (v storeView) Commit(key string, payload any, opts accessor.Options) {
	v.r.commit(key, payload, opts)
}

func (v storeView) Dispatch(key string, payload any, opts accessor.Options) accessor.Promise {
	return v.r.dispatch(key, payload, opts)
}

func (v storeView) Getters() map[string]any { return v.r.table() }

type contextView struct{ r *Recorder }

func (v contextView) Commit(key string, payload any, opts accessor.Options) {
	v.r.commit(key, payload, opts)
}

func (v contextView) Dispatch(key string, payload any, opts accessor.Options) accessor.Promise {
	return v.r.dispatch(key, payload, opts)
}

func (v contextView) RootGetters() map[string]any { return v.r.table() }
