package harness

import "github.com/roach88/vaultwrap/internal/ledger"

// Outcome of a successful step.
const OutcomeOK = "ok"

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Actor   string `json:"actor"`
	Amount  uint64 `json:"amount"`
	Outcome string `json:"outcome"` // OutcomeOK or an error code

	// Set only when Outcome is OutcomeOK.
	JournalSeq   int64  `json:"journal_seq,omitempty"`
	TotalWrapped uint64 `json:"total_wrapped,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Audit is the final conservation report; nil if the ledger was never
	// initialized.
	Audit *ledger.AuditReport `json:"audit,omitempty"`
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

// AddEvent appends a step to the trace.
func (r *Result) AddEvent(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
