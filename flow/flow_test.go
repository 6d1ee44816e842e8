package flow

import (
	"context"
	"testing"
	"time"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/tool"
)

// fakeTool is a configurable handler shared by the flow tests.
type fakeTool struct {
	name     string
	params   map[string]any
	delay    time.Duration
	result   any
	err      error
	panicMsg any
	// ignoreCtx simulates a handler that never checks its context.
	ignoreCtx bool
}

func (ft *fakeTool) Name() string        { return ft.name }
func (ft *fakeTool) Description() string { return "fake tool" }
func (ft *fakeTool) Parameters() map[string]any {
	if ft.params != nil {
		return ft.params
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (ft *fakeTool) Call(tc *core.ToolContext, _ map[string]any) (any, error) {
	if ft.delay > 0 {
		if ft.ignoreCtx {
			time.Sleep(ft.delay)
		} else {
			select {
			case <-time.After(ft.delay):
			case <-tc.Context().Done():
				return nil, tc.Context().Err()
			}
		}
	}
	if ft.panicMsg != nil {
		panic(ft.panicMsg)
	}
	return ft.result, ft.err
}

// argEcho returns the arguments it was called with, for asserting on the
// decode path.
type argEcho struct{ name string }

func (at *argEcho) Name() string        { return at.name }
func (at *argEcho) Description() string { return "echoes arguments" }
func (at *argEcho) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (at *argEcho) Call(_ *core.ToolContext, args map[string]any) (any, error) {
	return args, nil
}

func newTestRunContext() *core.RunContext {
	return core.NewRunContext(context.Background(), "run-test", nil, logging.NoOpLogger{})
}

func newCancelledRunContext(ctx context.Context) *core.RunContext {
	return core.NewRunContext(ctx, "run-cancelled", nil, logging.NoOpLogger{})
}

func newTestRegistry(t *testing.T, tools ...tool.Tool) *tool.Registry {
	t.Helper()
	registry := tool.NewRegistry()
	for _, tl := range tools {
		if err := registry.Register(tl); err != nil {
			t.Fatalf("register %s: %v", tl.Name(), err)
		}
	}
	return registry
}
