// Package tool implements the tool-calling subsystem that lets the oracle
// invoke structured capabilities (lookups, analyses, side-effects) with schema
// validated arguments, consistent error handling and rich metadata for oracle
// guidance.
package tool

import (
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/internal/util"
)

// Tool defines the interface for capabilities the oracle may invoke.
//
// Tools are registered once at startup with a Registry and routed to by exact
// name match. All tools receive a ToolContext giving access to the run's
// accumulated context (read-only), artifact storage and logging, so later
// calls can build on earlier results.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended) and descriptions
//   - Define a proper JSON schema for parameters
//   - Respect the ToolContext's cancellation context on blocking work
//   - Be safe for concurrent use: several tools from one oracle turn run in
//     parallel against the same shared context
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the oracle to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// The schema is used for argument validation and oracle function calling.
	Parameters() map[string]any

	// Call executes the tool with validated arguments and a ToolContext.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes attached to ToolError for uniform downstream handling.
const (
	CodeValidation = "VALIDATION_ERROR" // schema / argument mismatch
	CodeExecution  = "EXECUTION_ERROR"  // handler returned a non-ToolError error
	CodeUnknown    = "UNKNOWN_TOOL"     // no tool registered under the name
	CodeTimeout    = "TIMEOUT"          // per-call deadline exceeded
	CodeSingleUse  = "SINGLE_USE"       // non-idempotent tool invoked twice in one run
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
