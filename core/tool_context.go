package core

import "context"

// ToolContext provides a constrained, auditable surface for tool handlers
// invoked by the dispatcher. Handlers see the accumulated run context
// read-only and can park artifacts, but cannot mutate shared state.
type ToolContext struct {
	runCtx     *RunContext
	toolCallID string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext and
// the unique tool call id being executed. The Context may carry a tighter
// deadline than the run's when the dispatcher enforces a per-call timeout.
func NewToolContext(runCtx *RunContext, toolCallID string, callCtx context.Context) *ToolContext {
	if callCtx == nil {
		callCtx = runCtx.Context
	}
	return &ToolContext{
		runCtx:        &RunContext{Context: callCtx, RunID: runCtx.RunID, Store: runCtx.Store, Artifacts: runCtx.Artifacts, loggerAdapter: runCtx.loggerAdapter},
		toolCallID:    toolCallID,
		loggerAdapter: runCtx.loggerAdapter,
	}
}

// Context returns the cancellation context for this call. Handlers performing
// network I/O must respect it.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// RunID returns the owning run's identifier.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// ToolCallID returns the correlation id of the call being executed.
func (tc *ToolContext) ToolCallID() string { return tc.toolCallID }

// View returns the read-only snapshot surface over the run's ContextStore
// accumulated so far.
func (tc *ToolContext) View() ContextView { return tc.runCtx.View() }

// SaveArtifact stores bytes in the run's ArtifactStore.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	return tc.runCtx.SaveArtifact(id, data)
}

// GetArtifact retrieves previously saved artifact bytes.
func (tc *ToolContext) GetArtifact(id string) ([]byte, error) {
	return tc.runCtx.GetArtifact(id)
}
