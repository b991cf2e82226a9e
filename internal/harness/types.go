package harness

// TraceEvent is one step as seen from the store side: the key the accessor
// resolved, what it forwarded, and what came back.
type TraceEvent struct {
	Step    int    `json:"step"`
	Op      string `json:"op"`
	Key     string `json:"key"`
	Payload any    `json:"payload,omitempty"`
	Root    bool   `json:"root,omitempty"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in step order.
	Trace []TraceEvent `json:"trace"`

	// Calls is the store's view: every Commit and Dispatch it received.
	Calls []CallRecord `json:"calls"`

	// Errors contains validation error messages.
	Errors []string `json:"errors,omitempty"`

	// Session is the journal session the run was recorded under, if any.
	Session string `json:"session,omitempty"`
}

// CallRecord is a call received by the recording store.
type CallRecord struct {
	Op      string `json:"op"`
	Key     string `json:"key"`
	Payload any    `json:"payload,omitempty"`
	Root    bool   `json:"root"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Calls:  []CallRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
