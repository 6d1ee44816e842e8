// Package flow implements the tool-calling orchestration engine: the bounded
// iterate/dispatch/terminate state machine (Loop), the per-turn parallel
// fan-out over tool calls (Executor) and the name-routed dispatch boundary
// that isolates handler failures (Dispatcher).
//
// One Loop is instantiated per use site with its tool registry, instructions
// and ceiling; each Run owns its conversation, context store and dispatcher
// state, so loops are safe to reuse across runs.
package flow
