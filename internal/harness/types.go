package harness

// TraceEvent records one visited state and, unless it is the last, the
// joint move played from it.
type TraceEvent struct {
	Step     int                 `json:"step"`
	StateID  string              `json:"state_id"`
	State    []string            `json:"state"`
	Terminal bool                `json:"terminal"`
	Legal    map[string][]string `json:"legal,omitempty"`
	Goals    map[string]int      `json:"goals,omitempty"`
	Moves    []string            `json:"moves,omitempty"`
	// Rejected lists the error codes of joint moves refused in this state,
	// in the order they were tried.
	Rejected []string `json:"rejected,omitempty"`
	// Error is the code of a query that failed in this state, such as
	// ILL_DEFINED_GOAL.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Roles in circuit order; TraceEvent.Moves follows it.
	Roles []string `json:"roles"`

	// Trace contains every visited state in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Roles:  []string{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Last returns the last trace event. The trace always holds at least the
// initial state after Run.
func (r *Result) Last() *TraceEvent {
	return &r.Trace[len(r.Trace)-1]
}
