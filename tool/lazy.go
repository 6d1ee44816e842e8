package tool

import (
	"fmt"
	"sync"

	"github.com/agentloop/agentloop/core"
)

// LazyTool defers construction of an expensive handler (client pools, nested
// orchestration loops) until the oracle actually invokes it, so a run that
// never exercises the capability never pays its setup cost.
//
// Name, description and parameters must be declared up front because they are
// advertised to the oracle before any call happens; only the implementation
// is deferred. Construction happens at most once; a construction failure is
// cached and re-reported on subsequent calls.
type LazyTool struct {
	name        string
	description string
	parameters  map[string]any
	factory     func() (Tool, error)

	once     sync.Once
	delegate Tool
	initErr  error
}

// NewLazyTool wraps a factory so the underlying Tool is built on first use.
func NewLazyTool(
	name, description string,
	parameters map[string]any,
	factory func() (Tool, error),
) *LazyTool {
	return &LazyTool{
		name:        name,
		description: description,
		parameters:  parameters,
		factory:     factory,
	}
}

// Name returns the declared tool name.
func (t *LazyTool) Name() string { return t.name }

// Description returns the declared description.
func (t *LazyTool) Description() string { return t.description }

// Parameters returns the declared argument schema.
func (t *LazyTool) Parameters() map[string]any { return t.parameters }

// Call builds the delegate on first use, then forwards. Concurrent first
// calls block on the same construction.
func (t *LazyTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	t.once.Do(func() {
		toolCtx.Logger().Debug("tool.lazy.init", "tool", t.name)
		t.delegate, t.initErr = t.factory()
		if t.initErr == nil && t.delegate == nil {
			t.initErr = fmt.Errorf("factory returned nil tool")
		}
	})
	if t.initErr != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("lazy construction failed: %v", t.initErr),
			Code:    CodeExecution,
		}
	}
	return t.delegate.Call(toolCtx, args)
}
