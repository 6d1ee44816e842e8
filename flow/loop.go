package flow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/oracle"
	"github.com/agentloop/agentloop/summarize"
	"github.com/agentloop/agentloop/tool"
)

// DefaultMaxIterations bounds a run when the caller does not configure a
// ceiling. Matches the sample agents' default budget.
const DefaultMaxIterations = 20

// Config holds the per-use-site parameters of a Loop. One Loop replaces the
// per-agent handwritten copies of the orchestration cycle: same machinery,
// parameterized by registry, instructions, ceiling and terminal policy.
type Config struct {
	// Instructions is the system prompt framing the oracle's role.
	Instructions string
	// MaxIterations is the ceiling on oracle tool-selection turns per run.
	MaxIterations int
	// RequireToolsUntil forces the "required" tool policy for the first N
	// iterations (0 disables). Switches to "auto" afterwards, or as soon as
	// a terminal tool has produced the deliverable.
	RequireToolsUntil int
	// CallTimeout is the per-call deadline enforced by the dispatcher.
	// Zero means no deadline beyond the run's context.
	CallTimeout time.Duration
	// MaxParallel bounds the executor's fan-out per turn (0 = unbounded).
	MaxParallel int
	// Summarizer shapes results before they re-enter the conversation.
	// Nil gets a default-budget summarizer wired to Artifacts.
	Summarizer *summarize.Summarizer
	// Artifacts optionally stores parked payloads and handler output.
	Artifacts core.ArtifactStore
	// Logger receives engine telemetry. Nil silences it.
	Logger logging.Logger
}

// Loop is the tool-calling orchestration engine: it repeatedly asks the
// oracle which registered tools to invoke, dispatches each batch in parallel,
// folds all results back into the conversation, and terminates when the
// oracle stops requesting tools, a terminal tool delivers the deliverable, or
// the ceiling forces a best-effort close.
//
// A Loop carries no per-run state and is safe for sequential reuse; each Run
// gets a fresh conversation, context store and dispatcher.
type Loop struct {
	oracle   oracle.Oracle
	registry *tool.Registry
	cfg      Config

	executor   *Executor
	summarizer *summarize.Summarizer
	logger     logging.Logger
}

// NewLoop wires an orchestration loop for one use site.
func NewLoop(o oracle.Oracle, registry *tool.Registry, optFns ...func(c *Config)) *Loop {
	cfg := Config{
		MaxIterations: DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&cfg)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	summarizer := cfg.Summarizer
	if summarizer == nil {
		summarizer = summarize.New(func(o *summarize.Options) {
			o.Artifacts = cfg.Artifacts
			o.Logger = logger
		})
	}

	return &Loop{
		oracle:     o,
		registry:   registry,
		cfg:        cfg,
		executor:   NewExecutor(ExecutorConfig{MaxParallel: cfg.MaxParallel}),
		summarizer: summarizer,
		logger:     logger,
	}
}

// Registry exposes the loop's tool registry (used by facades for wiring).
func (l *Loop) Registry() *tool.Registry { return l.registry }

// Run executes one orchestration run for the given task prompt. It always
// returns a RunResult: Status RunCompleted or RunCeilingReached on the normal
// paths, RunAborted with Err set when the oracle call itself fails or the
// context is cancelled. Run never panics past this boundary and never raises
// an oracle failure to the caller.
func (l *Loop) Run(ctx context.Context, prompt string) *core.RunResult {
	start := time.Now()
	runID := core.NewID()

	runCtx := core.NewRunContext(ctx, runID, l.cfg.Artifacts, l.logger)
	conv := core.NewConversation(l.cfg.Instructions, prompt)
	dispatcher := NewDispatcher(l.registry, l.cfg.CallTimeout)
	defs := l.toolDefinitions()

	result := &core.RunResult{
		RunID:      runID,
		ToolCounts: make(map[string]int),
	}

	l.logger.Info("loop.run.start",
		"run_id", runID,
		"oracle", l.oracle.Info().Name,
		"tools", l.registry.Len(),
		"max_iterations", l.cfg.MaxIterations,
	)

	terminalDone := false
	ceilingHit := false

runLoop:
	for result.Iterations < l.cfg.MaxIterations {
		result.Iterations++

		choice := oracle.ToolChoiceAuto
		if l.cfg.RequireToolsUntil > 0 && result.Iterations <= l.cfg.RequireToolsUntil && !terminalDone {
			choice = oracle.ToolChoiceRequired
		}

		l.logger.Debug("loop.iteration",
			"run_id", runID,
			"iteration", result.Iterations,
			"tool_choice", string(choice),
		)

		resp, err := l.oracle.Decide(runCtx.Context, oracle.Request{
			Contents:   conv.Contents(),
			Tools:      defs,
			ToolChoice: choice,
		})
		if err != nil {
			// Oracle failure is fatal: return the partial result instead of
			// raising past the loop.
			l.logger.Error("loop.oracle.failed", "run_id", runID, "iteration", result.Iterations, "error", err.Error())
			result.Status = core.RunAborted
			result.Err = err
			break runLoop
		}

		if len(resp.ToolCalls) == 0 {
			// Oracle declared itself done.
			conv.AppendAssistant(resp.Content, nil)
			result.Answer = resp.Content
			result.Status = core.RunCompleted
			break runLoop
		}

		conv.AppendAssistant(resp.Content, resp.ToolCalls)

		l.logger.Info("loop.dispatching",
			"run_id", runID,
			"iteration", result.Iterations,
			"calls", len(resp.ToolCalls),
		)

		outcomes := l.executor.Execute(runCtx, dispatcher, resp.ToolCalls)

		// Fold exactly one result per issued call back into the conversation
		// before the next oracle call; the oracle's protocol requires a reply
		// for every call, never a silently dropped one.
		shaped := make([]core.ToolResult, len(outcomes))
		var terminal *core.ToolResult
		for i, oc := range outcomes {
			result.Ledger = append(result.Ledger, core.ToolCallRecord{
				Iteration:  result.Iterations,
				ToolCallID: oc.Result.ToolCallID,
				Tool:       oc.Result.Name,
				Arguments:  oc.Args,
				Success:    oc.Result.Success,
				Summary:    summarize.Brief(oc.Result),
				Error:      oc.Result.Error,
				Duration:   oc.Duration,
			})
			result.ToolCounts[oc.Result.Name]++

			if oc.Terminal {
				// Terminal output is the deliverable; replaying a digest of
				// it to the oracle would corrupt the run's actual product.
				shaped[i] = oc.Result
				if oc.Result.Success && terminal == nil {
					r := oc.Result
					terminal = &r
				}
				continue
			}
			shaped[i] = l.summarizer.Shape(runID, oc.Result)
		}
		conv.AppendToolResults(shaped)

		if terminal != nil {
			// Skip the otherwise-mandatory oracle acknowledgment round:
			// the deliverable exists, one round-trip saved.
			terminalDone = true
			result.Answer = renderAnswer(terminal.Value)
			result.Status = core.RunCompleted
			l.logger.Info("loop.terminal_tool", "run_id", runID, "tool", terminal.Name)
			break runLoop
		}

		if runCtx.Err() != nil {
			result.Status = core.RunAborted
			result.Err = runCtx.Err()
			break runLoop
		}

		if result.Iterations == l.cfg.MaxIterations {
			ceilingHit = true
		}
	}

	if ceilingHit {
		result.Status = core.RunCeilingReached
		l.closeAtCeiling(runCtx, conv, defs, result)
	}

	result.Context = runCtx.Store.Snapshot()
	result.Conversation = conv.Contents()
	result.Duration = time.Since(start)

	l.logger.Info("loop.run.complete",
		"run_id", runID,
		"status", result.Status.String(),
		"iterations", result.Iterations,
		"tool_calls", len(result.Ledger),
		"duration_ms", result.Duration.Milliseconds(),
	)
	for name, count := range result.ToolCounts {
		l.logger.Debug("loop.tool_count", "run_id", runID, "tool", name, "calls", count)
	}

	return result
}

// closeAtCeiling performs the single final tool-free oracle call that turns a
// ceiling stop into a best-effort closing answer. A failure here downgrades
// the run to aborted but still returns the partial result.
func (l *Loop) closeAtCeiling(runCtx *core.RunContext, conv *core.Conversation, defs []oracle.ToolDefinition, result *core.RunResult) {
	l.logger.Warn("loop.ceiling_reached", "run_id", result.RunID, "iterations", result.Iterations)

	resp, err := l.oracle.Decide(runCtx.Context, oracle.Request{
		Contents:   conv.Contents(),
		Tools:      defs,
		ToolChoice: oracle.ToolChoiceNone,
	})
	if err != nil {
		l.logger.Error("loop.closing_call.failed", "run_id", result.RunID, "error", err.Error())
		result.Status = core.RunAborted
		result.Err = err
		return
	}

	conv.AppendAssistant(resp.Content, nil)
	result.Answer = resp.Content
}

// toolDefinitions projects the registry into the oracle's declaration format.
func (l *Loop) toolDefinitions() []oracle.ToolDefinition {
	regs := l.registry.All()
	defs := make([]oracle.ToolDefinition, 0, len(regs))
	for _, reg := range regs {
		defs = append(defs, oracle.ToolDefinition{
			Name:        reg.Tool.Name(),
			Description: reg.Tool.Description(),
			Parameters:  reg.Tool.Parameters(),
		})
	}
	return defs
}

// renderAnswer turns a terminal tool's value into the run answer verbatim:
// strings pass through, anything else is serialized.
func renderAnswer(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
