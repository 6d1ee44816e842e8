package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/oracle"
	"github.com/agentloop/agentloop/tool"
)

// failAfterOracle delegates to a mock until n successful Decide calls have
// happened, then fails every subsequent call.
type failAfterOracle struct {
	mock  *oracle.MockOracle
	after int
	calls int
	err   error
}

func (o *failAfterOracle) Decide(ctx context.Context, req oracle.Request) (*oracle.Response, error) {
	o.calls++
	if o.calls > o.after {
		return nil, o.err
	}
	return o.mock.Decide(ctx, req)
}

func (o *failAfterOracle) Info() oracle.Info { return o.mock.Info() }

func TestLoop_NoToolsRequested(t *testing.T) {
	mock := oracle.NewMockOracle().SetFallback("All done.")
	loop := NewLoop(mock, newTestRegistry(t))

	res := loop.Run(context.Background(), "say hi")
	if res.Status != core.RunCompleted {
		t.Fatalf("expected completed, got %s", res.Status)
	}
	if res.Iterations != 1 {
		t.Fatalf("expected 1 iteration, got %d", res.Iterations)
	}
	if res.Answer != "All done." {
		t.Fatalf("unexpected answer %q", res.Answer)
	}
	if len(res.Ledger) != 0 {
		t.Fatalf("expected empty ledger, got %d records", len(res.Ledger))
	}
}

func TestLoop_TwoIterationRun(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "search", Arguments: `{"q":"go"}`})
	mock.EnqueueContent("Go is a language.")

	registry := tool.NewRegistry()
	if err := registry.Register(&fakeTool{name: "search", result: map[string]any{"hits": 2}}, tool.WithCategory("research")); err != nil {
		t.Fatalf("register: %v", err)
	}
	loop := NewLoop(mock, registry)

	res := loop.Run(context.Background(), "what is go?")
	if res.Status != core.RunCompleted {
		t.Fatalf("expected completed, got %s (err=%v)", res.Status, res.Err)
	}
	if res.Iterations != 2 {
		t.Fatalf("expected 2 iterations, got %d", res.Iterations)
	}
	if res.Answer != "Go is a language." {
		t.Fatalf("unexpected answer %q", res.Answer)
	}
	if len(res.Ledger) != 1 || res.Ledger[0].Tool != "search" || !res.Ledger[0].Success {
		t.Fatalf("unexpected ledger %+v", res.Ledger)
	}
	if res.ToolCounts["search"] != 1 {
		t.Fatalf("unexpected tool counts %v", res.ToolCounts)
	}
	if len(res.Context["research"]) != 1 {
		t.Fatalf("expected search output in context, got %v", res.Context)
	}
}

func TestLoop_UnknownToolDoesNotAbortRun(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(
		core.ToolCall{ID: "c1", Name: "known_a", Arguments: "{}"},
		core.ToolCall{ID: "c2", Name: "ghost", Arguments: "{}"},
		core.ToolCall{ID: "c3", Name: "known_b", Arguments: "{}"},
	)
	mock.EnqueueContent("Recovered and answered.")

	loop := NewLoop(mock, newTestRegistry(t,
		&fakeTool{name: "known_a", result: "A"},
		&fakeTool{name: "known_b", result: "B"},
	))

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCompleted {
		t.Fatalf("run should survive an unknown tool, got %s", res.Status)
	}
	if len(res.Ledger) != 3 {
		t.Fatalf("expected one ledger record per issued call, got %d", len(res.Ledger))
	}
	var ghost *core.ToolCallRecord
	for i := range res.Ledger {
		if res.Ledger[i].Tool == "ghost" {
			ghost = &res.Ledger[i]
		}
	}
	if ghost == nil || ghost.Success || ghost.Error != "unknown tool: ghost" {
		t.Fatalf("unexpected ghost record %+v", ghost)
	}

	// The oracle must have received a reply for every call it issued.
	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", len(reqs))
	}
	last := reqs[1].Contents[len(reqs[1].Contents)-1]
	if got := len(last.ToolResults()); got != 3 {
		t.Fatalf("expected 3 tool results in the folded turn, got %d", got)
	}
}

func TestLoop_CeilingTriggersFinalToolFreeCall(t *testing.T) {
	mock := oracle.NewMockOracle().SetFallback("Best effort summary.")
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "search", Arguments: "{}"})

	loop := NewLoop(mock, newTestRegistry(t, &fakeTool{name: "search", result: "r"}), func(c *Config) {
		c.MaxIterations = 1
	})

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCeilingReached {
		t.Fatalf("expected ceiling_reached, got %s", res.Status)
	}
	if res.Iterations != 1 {
		t.Fatalf("closing call must not count as an iteration, got %d", res.Iterations)
	}
	if res.Answer == "" {
		t.Fatal("ceiling close must still produce an answer")
	}

	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected dispatch turn plus one closing call, got %d oracle calls", len(reqs))
	}
	if reqs[1].ToolChoice != oracle.ToolChoiceNone {
		t.Fatalf("closing call must forbid tools, got %q", reqs[1].ToolChoice)
	}
}

func TestLoop_NeverExceedsCeiling(t *testing.T) {
	mock := oracle.NewMockOracle().SetFallback("Stopped.")
	// Script far more tool turns than the ceiling allows.
	for i := 0; i < 10; i++ {
		mock.EnqueueToolCalls(core.ToolCall{ID: "c", Name: "search", Arguments: "{}"})
	}

	loop := NewLoop(mock, newTestRegistry(t, &fakeTool{name: "search", result: "r"}), func(c *Config) {
		c.MaxIterations = 3
	})

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCeilingReached {
		t.Fatalf("expected ceiling_reached, got %s", res.Status)
	}
	if res.Iterations != 3 {
		t.Fatalf("expected exactly 3 iterations, got %d", res.Iterations)
	}
	// 3 tool-selection turns + 1 closing call, never more.
	if got := len(mock.Requests()); got != 4 {
		t.Fatalf("expected 4 oracle calls, got %d", got)
	}
}

func TestLoop_OracleFailureAbortsWithPartialResult(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "search", Arguments: "{}"})
	fatal := errors.New("rate limited")
	flaky := &failAfterOracle{mock: mock, after: 1, err: fatal}

	loop := NewLoop(flaky, newTestRegistry(t, &fakeTool{name: "search", result: "r"}))

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunAborted {
		t.Fatalf("expected aborted, got %s", res.Status)
	}
	if !errors.Is(res.Err, fatal) {
		t.Fatalf("expected causal error, got %v", res.Err)
	}
	// Work done before the failure is preserved.
	if len(res.Ledger) != 1 {
		t.Fatalf("expected partial ledger, got %d records", len(res.Ledger))
	}
}

func TestLoop_TerminalToolShortCircuits(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "deliver", Arguments: "{}"})

	registry := tool.NewRegistry()
	if err := registry.Register(&fakeTool{name: "deliver", result: "the final itinerary"}, tool.AsTerminal()); err != nil {
		t.Fatalf("register: %v", err)
	}
	loop := NewLoop(mock, registry)

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCompleted {
		t.Fatalf("expected completed, got %s", res.Status)
	}
	if res.Answer != "the final itinerary" {
		t.Fatalf("terminal output should be the answer verbatim, got %q", res.Answer)
	}
	// No acknowledgment round after the deliverable.
	if got := len(mock.Requests()); got != 1 {
		t.Fatalf("expected a single oracle call, got %d", got)
	}
}

func TestLoop_FailedTerminalToolContinues(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "deliver", Arguments: "{}"})
	mock.EnqueueContent("Fell back to a plain answer.")

	registry := tool.NewRegistry()
	err := registry.Register(&fakeTool{name: "deliver", err: tool.NewToolError("deliver", "missing inputs", tool.CodeExecution)}, tool.AsTerminal())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	loop := NewLoop(mock, registry)

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCompleted {
		t.Fatalf("a failed terminal call must not end the run, got %s", res.Status)
	}
	if res.Answer != "Fell back to a plain answer." {
		t.Fatalf("unexpected answer %q", res.Answer)
	}
	if got := len(mock.Requests()); got != 2 {
		t.Fatalf("expected the loop to continue after the failure, got %d oracle calls", got)
	}
}

func TestLoop_RequireToolsUntil(t *testing.T) {
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "search", Arguments: "{}"})
	mock.EnqueueToolCalls(core.ToolCall{ID: "c2", Name: "search", Arguments: "{}"})
	mock.EnqueueContent("Answer.")

	loop := NewLoop(mock, newTestRegistry(t, &fakeTool{name: "search", result: "r"}), func(c *Config) {
		c.RequireToolsUntil = 2
	})

	res := loop.Run(context.Background(), "task")
	if res.Status != core.RunCompleted {
		t.Fatalf("expected completed, got %s", res.Status)
	}

	reqs := mock.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 oracle calls, got %d", len(reqs))
	}
	if reqs[0].ToolChoice != oracle.ToolChoiceRequired || reqs[1].ToolChoice != oracle.ToolChoiceRequired {
		t.Fatalf("first two turns must require tools, got %q %q", reqs[0].ToolChoice, reqs[1].ToolChoice)
	}
	if reqs[2].ToolChoice != oracle.ToolChoiceAuto {
		t.Fatalf("later turns must relax to auto, got %q", reqs[2].ToolChoice)
	}
}

func TestLoop_ResultsAreSummarizedForOracleButRawInContext(t *testing.T) {
	long := strings.Repeat("x", 5000)
	mock := oracle.NewMockOracle()
	mock.EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "fetch", Arguments: "{}"})
	mock.EnqueueContent("Done.")

	registry := tool.NewRegistry()
	err := registry.Register(&fakeTool{name: "fetch", result: map[string]any{"body": long}}, tool.WithCategory("research"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	loop := NewLoop(mock, registry)

	res := loop.Run(context.Background(), "task")

	// The oracle saw a truncated copy.
	reqs := mock.Requests()
	folded := reqs[1].Contents[len(reqs[1].Contents)-1].ToolResults()
	if len(folded) != 1 {
		t.Fatalf("expected 1 folded result, got %d", len(folded))
	}
	shaped := folded[0].Value.(map[string]any)["body"].(string)
	if len(shaped) >= len(long) || !strings.HasSuffix(shaped, "...") {
		t.Fatalf("expected truncated body, got %d chars", len(shaped))
	}

	// The context store kept the raw payload.
	raw := res.Context["research"][0].(map[string]any)["body"].(string)
	if len(raw) != len(long) {
		t.Fatalf("context must hold the raw value, got %d chars", len(raw))
	}
}

func TestLoop_CancelledContextAborts(t *testing.T) {
	mock := oracle.NewMockOracle()
	loop := NewLoop(mock, newTestRegistry(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := loop.Run(ctx, "task")
	if res.Status != core.RunAborted {
		t.Fatalf("expected aborted, got %s", res.Status)
	}
	if res.Err == nil {
		t.Fatal("expected cancellation error")
	}
}
