package flow

import (
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/tool"
)

// AgentTool exposes a nested orchestration Loop as a tool: a
// specialized-analysis handler that internally runs its own oracle/tool cycle
// with its own ceiling. The nested run's failure surfaces as an ordinary tool
// failure so the outer oracle can route around it.
//
// Pair with tool.NewLazyTool when constructing the inner loop is expensive
// and most runs never exercise the capability.
type AgentTool struct {
	name        string
	description string
	parameters  map[string]any
	loop        *Loop
	buildPrompt func(args map[string]any) string
}

// NewAgentTool wraps a Loop. buildPrompt converts the oracle-supplied
// arguments into the inner run's task prompt; nil uses the "task" argument.
func NewAgentTool(
	name, description string,
	parameters map[string]any,
	loop *Loop,
	buildPrompt func(args map[string]any) string,
) *AgentTool {
	if buildPrompt == nil {
		buildPrompt = func(args map[string]any) string {
			if task, ok := args["task"].(string); ok {
				return task
			}
			return ""
		}
	}
	return &AgentTool{
		name:        name,
		description: description,
		parameters:  parameters,
		loop:        loop,
		buildPrompt: buildPrompt,
	}
}

// Name returns the tool name.
func (t *AgentTool) Name() string { return t.name }

// Description returns the tool description.
func (t *AgentTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *AgentTool) Parameters() map[string]any { return t.parameters }

// Call runs the nested loop under the outer call's context, so the outer
// dispatcher's timeout and the run's cancellation both reach the inner run.
func (t *AgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	prompt := t.buildPrompt(args)
	if prompt == "" {
		return nil, tool.NewToolError(t.name, "could not derive a task prompt from arguments", tool.CodeValidation)
	}

	toolCtx.Logger().Info("agent_tool.nested_run.start", "tool", t.name, "outer_run_id", toolCtx.RunID())

	res := t.loop.Run(toolCtx.Context(), prompt)
	if res.Status == core.RunAborted {
		return nil, fmt.Errorf("nested run aborted: %w", res.Err)
	}

	return map[string]any{
		"answer":     res.Answer,
		"status":     res.Status.String(),
		"iterations": res.Iterations,
		"tool_calls": len(res.Ledger),
	}, nil
}
