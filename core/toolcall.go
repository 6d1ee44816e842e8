package core

// ToolCall describes a tool invocation request produced by the oracle.
// The ID is the correlation key, unique within one oracle turn; every
// ToolCall is consumed exactly once by the dispatcher.
type ToolCall struct {
	ID        string `json:"id"`                  // Correlation key within one oracle turn
	Name      string `json:"name"`                // Tool name (exact-match routing key)
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// ToolResult captures the outcome of a ToolCall. Exactly one ToolResult
// exists per ToolCall; after it is folded into the conversation and the
// ContextStore it is treated as immutable. Correlation is always by
// ToolCallID, never positional.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Value      any    `json:"value,omitempty"` // Successful result payload (any JSON-serializable shape)
	Error      string `json:"error,omitempty"` // Populated when Success is false
}

// NewToolResult builds a successful result for the given call.
func NewToolResult(call ToolCall, value any) ToolResult {
	return ToolResult{ToolCallID: call.ID, Name: call.Name, Success: true, Value: value}
}

// NewToolErrorResult builds a failed result for the given call. A nil err
// yields an empty error message; callers should pass the causal error.
func NewToolErrorResult(call ToolCall, err error) ToolResult {
	r := ToolResult{ToolCallID: call.ID, Name: call.Name, Success: false}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
