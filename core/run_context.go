package core

import (
	"context"
	"fmt"

	"github.com/agentloop/agentloop/logging"
)

// RunContext carries the mutable, per-run execution scope threaded through
// the loop, the dispatcher and every handler. It aggregates:
//
//   - The ambient cancellation Context (aborting it aborts the run)
//   - The RunID correlation identifier
//   - The shared append-only ContextStore
//   - The optional ArtifactStore for parked payloads
//
// One RunContext exists per orchestration run; handlers never receive it
// directly, only the constrained ToolContext derived from it.
type RunContext struct {
	Context   context.Context
	RunID     string
	Store     *ContextStore
	Artifacts ArtifactStore

	*loggerAdapter
}

// NewRunContext constructs a RunContext with a fresh ContextStore.
func NewRunContext(ctx context.Context, runID string, artifacts ArtifactStore, logger logging.Logger) *RunContext {
	return &RunContext{
		Context:       ctx,
		RunID:         runID,
		Store:         NewContextStore(),
		Artifacts:     artifacts,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// View returns the read-only surface over the run's ContextStore.
func (rc *RunContext) View() ContextView { return rc.Store.View() }

// SaveArtifact stores bytes in the ArtifactStore under this run.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.Artifacts == nil {
		return fmt.Errorf("artifact store not configured")
	}
	return rc.Artifacts.Save(rc.RunID, id, data)
}

// GetArtifact retrieves previously saved artifact bytes for this run.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.Artifacts == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	return rc.Artifacts.Get(rc.RunID, id)
}
