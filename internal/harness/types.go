package harness

// TraceEvent is one executed operation in a scenario trace. Successful
// operations carry the journal's result; failed ones carry the error
// code and the raw step args.
type TraceEvent struct {
	Op     string         `json:"op"`
	Args   map[string]any `json:"args"`
	Seq    uint64         `json:"seq,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every flow step matched
	// its expected outcome, every assertion held, and replay reproduced
	// the final state.
	Pass bool `json:"pass"`

	// Trace contains every executed operation in order, setup included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the canonical JSON state snapshot after the flow.
	Snapshot []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
