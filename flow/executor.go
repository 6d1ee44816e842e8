package flow

import (
	"sync"
	"time"

	"github.com/agentloop/agentloop/core"
)

// ExecutorConfig configures the parallel executor.
type ExecutorConfig struct {
	MaxParallel int // 0 or <1 => no explicit limit (len(calls))
}

// Executor fans the tool calls of one oracle turn out to the dispatcher and
// collects exactly one Outcome per call. Completion order between workers is
// unconstrained — a slow call never blocks a fast sibling's handler, only the
// final collection point waits for all — and correlation is carried by
// ToolCallID, never by position.
type Executor struct {
	cfg ExecutorConfig
}

// NewExecutor constructs an executor with the given config.
func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{cfg: cfg}
}

// Execute dispatches every call in the batch and returns outcomes in input
// order, one per call, failures included. A single-call batch bypasses
// worker-pool overhead and runs inline.
func (e *Executor) Execute(runCtx *core.RunContext, d *Dispatcher, calls []core.ToolCall) []Outcome {
	n := len(calls)
	if n == 0 {
		return nil
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		return []Outcome{d.Dispatch(runCtx, calls[0])}
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	outcomes := make([]Outcome, n)
	dispatched := make([]bool, n)
	var wg sync.WaitGroup

	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		if runCtx.Context.Err() != nil { // pre-check cancellation
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		dispatched[i] = true
		go func(idx int, call core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = d.Dispatch(runCtx, call)
		}(i, calls[i])
	}

	wg.Wait()

	// The oracle expects a reply for every call it issued; calls skipped by
	// cancellation still get an explicit failure result.
	for i := range calls {
		if !dispatched[i] {
			outcomes[i] = Outcome{
				Result: core.NewToolErrorResult(calls[i], runCtx.Context.Err()),
				Args:   map[string]any{},
			}
		}
	}

	runCtx.LogDebug(
		"executor.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return outcomes
}
