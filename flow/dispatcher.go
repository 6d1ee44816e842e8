package flow

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/internal/util"
	"github.com/agentloop/agentloop/tool"
)

// Outcome couples a ToolResult with the dispatch metadata the loop folds
// into the run ledger.
type Outcome struct {
	Result   core.ToolResult
	Args     map[string]any // Arguments after decoding (empty map when malformed)
	Terminal bool           // Registration policy: success is the run deliverable
	Duration time.Duration
}

// Dispatcher routes one ToolCall to its registered handler and converts every
// failure mode — unknown name, malformed or invalid arguments, handler error,
// panic, per-call timeout — into a ToolResult with Success=false. Handler
// failures never propagate past this boundary; the oracle decides how to
// recover from them.
//
// A Dispatcher holds per-run state (single-use tracking) and must be created
// fresh for each run.
type Dispatcher struct {
	registry    *tool.Registry
	callTimeout time.Duration // 0 = no per-call deadline

	mu   sync.Mutex
	used map[string]bool // single-use tools already invoked this run
}

// NewDispatcher creates a per-run dispatcher over a registry. callTimeout,
// when non-zero, is enforced centrally: a handler that overruns it yields a
// TIMEOUT result even if it ignores its context.
func NewDispatcher(registry *tool.Registry, callTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		callTimeout: callTimeout,
		used:        make(map[string]bool),
	}
}

// Dispatch executes one call and always returns exactly one Outcome.
func (d *Dispatcher) Dispatch(runCtx *core.RunContext, call core.ToolCall) Outcome {
	start := time.Now()

	reg, ok := d.registry.Get(call.Name)
	if !ok {
		runCtx.LogWarn("dispatch.unknown_tool", "tool", call.Name, "tool_call_id", call.ID)
		return Outcome{
			Result:   core.NewToolErrorResult(call, fmt.Errorf("unknown tool: %s", call.Name)),
			Args:     map[string]any{},
			Duration: time.Since(start),
		}
	}

	if reg.SingleUse && !d.markUsed(call.Name) {
		runCtx.LogWarn("dispatch.single_use_violation", "tool", call.Name)
		return Outcome{
			Result: core.NewToolErrorResult(call,
				tool.NewToolError(call.Name, "tool already invoked in this run", tool.CodeSingleUse)),
			Args:     map[string]any{},
			Terminal: reg.Terminal,
			Duration: time.Since(start),
		}
	}

	// Malformed arguments degrade to an empty-argument call rather than an
	// abort; the oracle sees any resulting validation error and can retry.
	args, err := util.DecodeArguments(call.Arguments)
	if err != nil {
		runCtx.LogWarn("dispatch.malformed_arguments", "tool", call.Name, "error", err.Error())
	}

	callCtx := runCtx.Context
	cancel := context.CancelFunc(func() {})
	if d.callTimeout > 0 {
		callCtx, cancel = context.WithTimeout(runCtx.Context, d.callTimeout)
	}
	defer cancel()

	toolCtx := core.NewToolContext(runCtx, call.ID, callCtx)

	value, callErr := d.invoke(toolCtx, reg.Tool, args)
	dur := time.Since(start)

	if callErr != nil {
		if errors.Is(callErr, context.DeadlineExceeded) {
			callErr = tool.NewToolError(call.Name, fmt.Sprintf("call exceeded %s timeout", d.callTimeout), tool.CodeTimeout)
		}
		runCtx.LogInfo("dispatch.executed", "tool", call.Name, "duration_ms", dur.Milliseconds(), "error", true)
		return Outcome{
			Result:   core.NewToolErrorResult(call, callErr),
			Args:     args,
			Terminal: reg.Terminal,
			Duration: dur,
		}
	}

	runCtx.LogInfo("dispatch.executed", "tool", call.Name, "duration_ms", dur.Milliseconds(), "error", false)

	if reg.Category != "" {
		runCtx.Store.Append(reg.Category, value)
	}

	return Outcome{
		Result:   core.NewToolResult(call, value),
		Args:     args,
		Terminal: reg.Terminal,
		Duration: dur,
	}
}

// invoke runs the handler in its own goroutine so the dispatcher can abandon
// it at the deadline even when the handler ignores its context. Panics are
// recovered at this boundary and surfaced as errors.
func (d *Dispatcher) invoke(toolCtx *core.ToolContext, impl tool.Tool, args map[string]any) (any, error) {
	type callReturn struct {
		value any
		err   error
	}

	done := make(chan callReturn, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				toolCtx.LogError("dispatch.panic", "tool", impl.Name(), "recover", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
				done <- callReturn{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		v, err := impl.Call(toolCtx, args)
		done <- callReturn{value: v, err: err}
	}()

	select {
	case <-toolCtx.Context().Done():
		return nil, toolCtx.Context().Err()
	case ret := <-done:
		return ret.value, ret.err
	}
}

// markUsed records a single-use invocation; it reports false when the tool
// was already consumed this run.
func (d *Dispatcher) markUsed(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.used[name] {
		return false
	}
	d.used[name] = true
	return true
}
