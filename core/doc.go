// Package core provides the foundational domain types and execution contexts
// used by AgentLoop. It defines the core abstractions for:
//
//   - ToolCall / ToolResult (the oracle's invocation protocol)
//   - Conversation (the append-only turn sequence replayed to the oracle)
//   - ContextStore (run-scoped, append-only accumulation of tool output)
//   - RunContext / ToolContext (scoped execution & handler sandboxing)
//   - RunResult / RunStatus (the terminal audit snapshot of a run)
//
// The package intentionally keeps implementation concerns (oracle transports,
// dispatching, summarization) out of scope, exposing small types so the flow
// package and user code can compose them.
package core
