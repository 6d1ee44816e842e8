// Package agentloop provides a high-level façade over the orchestration
// engine for building tool-calling agents. Most applications interact with
// this package by:
//  1. Creating an Engine via New() with an oracle implementation
//  2. Registering tools (plain functions, lazy handlers, nested agents)
//  3. Executing runs with Run()
//
// The façade delegates orchestration to flow.Loop while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger, an
// artifact store and per-session caches.
package agentloop

import (
	"context"
	"time"

	"github.com/agentloop/agentloop/artifact"
	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/flow"
	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/oracle"
	"github.com/agentloop/agentloop/tool"
)

// Options configures the Engine.
type Options struct {
	// Instructions is the system prompt framing every run of this engine.
	Instructions string
	// MaxIterations is the per-run ceiling on oracle tool-selection turns.
	MaxIterations int
	// RequireToolsUntil forces tool calls for the first N iterations.
	RequireToolsUntil int
	// MaxParallel bounds per-turn tool fan-out (0 = one worker per call).
	MaxParallel int
	// CallTimeout is the centrally enforced per-call deadline (0 = none).
	CallTimeout time.Duration
	// Artifacts stores parked binary payloads; defaults to in-memory.
	Artifacts core.ArtifactStore
	// Logger receives engine telemetry; defaults to NoOpLogger.
	Logger logging.Logger
}

// Engine couples a tool registry with a configured orchestration loop.
type Engine struct {
	registry *tool.Registry
	loop     *flow.Loop
}

// New creates an Engine bound to an oracle.
func New(o oracle.Oracle, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxIterations: flow.DefaultMaxIterations,
		Artifacts:     artifact.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry()
	loop := flow.NewLoop(o, registry, func(c *flow.Config) {
		c.Instructions = opts.Instructions
		c.MaxIterations = opts.MaxIterations
		c.RequireToolsUntil = opts.RequireToolsUntil
		c.MaxParallel = opts.MaxParallel
		c.CallTimeout = opts.CallTimeout
		c.Artifacts = opts.Artifacts
		c.Logger = opts.Logger
	})

	return &Engine{registry: registry, loop: loop}
}

// RegisterTool adds a tool with optional policy (category, terminal,
// single-use) to the engine's registry.
func (e *Engine) RegisterTool(t tool.Tool, optFns ...func(*tool.Registration)) error {
	return e.registry.Register(t, optFns...)
}

// MustRegisterTool is RegisterTool that panics on configuration errors.
func (e *Engine) MustRegisterTool(t tool.Tool, optFns ...func(*tool.Registration)) {
	e.registry.MustRegister(t, optFns...)
}

// Registry exposes the underlying registry for advanced wiring.
func (e *Engine) Registry() *tool.Registry { return e.registry }

// Run executes one orchestration run for the task prompt.
func (e *Engine) Run(ctx context.Context, prompt string) *core.RunResult {
	return e.loop.Run(ctx, prompt)
}
