package tool

import (
	"fmt"
	"sync"
)

// Registration couples a Tool with the engine-level policy attached to it:
// which ContextStore category successful results accumulate under, whether a
// successful call is the run's deliverable (terminal), and whether the tool
// carries external side effects that make it single-use per run.
type Registration struct {
	Tool      Tool
	Category  string // ContextStore category for successful results ("" = not accumulated)
	Terminal  bool   // success ends the run without an oracle acknowledgment round
	SingleUse bool   // non-idempotent; at most one invocation per run
}

// WithCategory sets the ContextStore category for a registration.
func WithCategory(category string) func(*Registration) {
	return func(r *Registration) { r.Category = category }
}

// AsTerminal marks the tool's success as the run deliverable.
func AsTerminal() func(*Registration) {
	return func(r *Registration) { r.Terminal = true }
}

// AsSingleUse marks the tool as non-idempotent, limited to one call per run.
func AsSingleUse() func(*Registration) {
	return func(r *Registration) { r.SingleUse = true }
}

// Registry is the static declaration of invocable capabilities for one loop.
// Tools are registered once at startup; lookups are by exact name. The
// registry is safe for concurrent reads during a run.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a tool with optional policy overrides. Registering a second
// tool under an existing name is a configuration error.
func (r *Registry) Register(t Tool, optFns ...func(*Registration)) error {
	if t == nil {
		return fmt.Errorf("cannot register nil tool")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("cannot register tool with empty name")
	}

	reg := Registration{Tool: t}
	for _, fn := range optFns {
		fn(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.entries[name] = reg
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on configuration errors. Intended for
// startup wiring where a bad registration is a programming mistake.
func (r *Registry) MustRegister(t Tool, optFns ...func(*Registration)) {
	if err := r.Register(t, optFns...); err != nil {
		panic(err)
	}
}

// Get returns the registration for a name.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg, ok
}

// All returns registrations in registration order.
func (r *Registry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
