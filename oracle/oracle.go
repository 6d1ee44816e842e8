// Package oracle abstracts the external reasoning service that decides which
// tool to invoke next. The engine is strictly turn-taking: one request with
// the conversation-so-far, the declared tools and a tool-selection policy;
// one response carrying either natural-language content (the termination
// signal) or one-or-more structured tool calls. Provider internals are out of
// scope behind the Oracle interface.
package oracle

import (
	"context"

	"github.com/agentloop/agentloop/core"
)

// ToolChoice expresses the tool-selection policy for one oracle turn.
type ToolChoice string

const (
	// ToolChoiceAuto lets the oracle decide whether to call tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceRequired forces at least one tool call this turn.
	ToolChoiceRequired ToolChoice = "required"
	// ToolChoiceNone forbids tool calls; used for the final closing answer
	// when the iteration ceiling is reached.
	ToolChoiceNone ToolChoice = "none"
)

// ToolDefinition declaratively exposes a callable tool to the oracle.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized oracle input produced by the loop.
type Request struct {
	Contents   []core.Content   `json:"contents"` // Conversation-so-far, in turn order
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice ToolChoice       `json:"tool_choice,omitempty"` // Defaults to auto
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one complete oracle turn. ToolCalls empty means the oracle
// declared itself done and Content is the closing answer.
type Response struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"` // "stop", "tool_calls", "length", ...
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Info contains metadata about an oracle implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Oracle is the minimal interface the loop needs to drive one reasoning turn.
// A transport or parse failure is fatal to the run, so implementations should
// only return errors they cannot recover from themselves.
type Oracle interface {
	Decide(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the oracle implementation.
	Info() Info
}
