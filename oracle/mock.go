package oracle

import (
	"context"
	"sync"

	"github.com/agentloop/agentloop/core"
)

// MockOracle is a deterministic, script-driven Oracle for tests and examples.
// Decide pops the next scripted response; once the script is exhausted it
// returns a plain closing answer, matching a model that has finished. It
// records every request it receives so tests can assert on the conversation
// and tool-choice policy the loop produced.
type MockOracle struct {
	mu       sync.Mutex
	script   []Response
	requests []Request
	err      error
	fallback string
}

// NewMockOracle constructs an empty mock; an unscripted mock always answers
// with the fallback closing text.
func NewMockOracle() *MockOracle {
	return &MockOracle{fallback: "Done."}
}

// Enqueue appends a scripted response returned by a later Decide call.
func (m *MockOracle) Enqueue(resp Response) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
	return m
}

// EnqueueToolCalls scripts a turn requesting the given calls.
func (m *MockOracle) EnqueueToolCalls(calls ...core.ToolCall) *MockOracle {
	return m.Enqueue(Response{ToolCalls: calls, FinishReason: "tool_calls"})
}

// EnqueueContent scripts a tool-free closing turn.
func (m *MockOracle) EnqueueContent(text string) *MockOracle {
	return m.Enqueue(Response{Content: text, FinishReason: "stop"})
}

// FailWith makes every subsequent Decide return err, simulating an
// unrecoverable transport failure.
func (m *MockOracle) FailWith(err error) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// SetFallback overrides the answer returned once the script runs out.
func (m *MockOracle) SetFallback(text string) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = text
	return m
}

// Requests returns a snapshot of every request received so far.
func (m *MockOracle) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Decide implements Oracle.
func (m *MockOracle) Decide(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}

	if len(m.script) == 0 {
		return &Response{Content: m.fallback, FinishReason: "stop"}, nil
	}

	next := m.script[0]
	m.script = m.script[1:]

	// A "none" policy turn must not surface tool calls even if the script
	// was written before the ceiling was known.
	if req.ToolChoice == ToolChoiceNone && len(next.ToolCalls) > 0 {
		next = Response{Content: m.fallback, FinishReason: "stop"}
	}

	return &next, nil
}

// Info implements Oracle.
func (m *MockOracle) Info() Info {
	return Info{Name: "mock", Provider: "mock", SupportsTools: true}
}
