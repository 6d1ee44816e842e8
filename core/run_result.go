package core

import "time"

// RunStatus distinguishes how a run ended. The zero value is RunCompleted.
type RunStatus int

const (
	// RunCompleted means the oracle finished voluntarily (a tool-free turn)
	// or a terminal tool delivered the run's deliverable.
	RunCompleted RunStatus = iota
	// RunCeilingReached means the iteration ceiling forced termination after
	// one final tool-free oracle call produced a best-effort closing answer.
	RunCeilingReached
	// RunAborted means the oracle call itself failed unrecoverably; the
	// RunResult is partial and Err carries the cause.
	RunAborted
)

// String returns the status label used in logs and serialized results.
func (s RunStatus) String() string {
	switch s {
	case RunCompleted:
		return "completed"
	case RunCeilingReached:
		return "ceiling_reached"
	case RunAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ToolCallRecord is one ledger entry: which tool ran on which iteration with
// which arguments, and a short summary of what came back. The full raw value
// lives in the ContextStore snapshot.
type ToolCallRecord struct {
	Iteration  int            `json:"iteration"`
	ToolCallID string         `json:"tool_call_id"`
	Tool       string         `json:"tool"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Success    bool           `json:"success"`
	Summary    string         `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

// RunResult is the terminal, immutable snapshot of one orchestration run:
// the externally observable contract for callers and observability tooling.
// A run always returns a RunResult, including the abort path (partial, with
// Err set and Status RunAborted).
type RunResult struct {
	RunID        string           `json:"run_id"`
	Status       RunStatus        `json:"status"`
	Iterations   int              `json:"iterations"` // Tool-selection turns performed (the ceiling's closing call is not counted)
	Answer       string           `json:"answer"`     // Final assistant content (or terminal tool deliverable)
	Ledger       []ToolCallRecord `json:"ledger"`
	ToolCounts   map[string]int   `json:"tool_counts"` // Per-tool invocation totals across the run
	Context      map[string][]any `json:"context"`     // Final ContextStore snapshot
	Conversation []Content        `json:"-"`           // Full turn sequence, for callers that capture it
	Duration     time.Duration    `json:"duration"`
	Err          error            `json:"-"` // Non-nil only when Status is RunAborted
}
