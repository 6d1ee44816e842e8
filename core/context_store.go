package core

import "sync"

// ContextView is the read-only surface handed to tool handlers. Later calls
// use it to build on earlier results (e.g. a financial-analysis handler
// reading prior research entries).
type ContextView interface {
	// Entries returns a snapshot of the payloads appended to a category, in
	// append order.
	Entries(category string) []any
	// Categories returns the categories that currently hold entries.
	Categories() []string
	// Len returns the number of entries in a category.
	Len(category string) int
}

// ContextStore accumulates tool output across one orchestration run, keyed by
// category (e.g. "research", "analysis", "specialized"). It is shared by
// reference across all handlers in the run.
//
// The append-only discipline is structural, not conventional: Append is the
// only mutator, reads return copies, and there is no way to remove or replace
// an entry. Safe for concurrent use by a batch of parallel handlers.
type ContextStore struct {
	mu      sync.RWMutex
	entries map[string][]any
}

// NewContextStore returns an empty store. One store is created per run;
// it is never cleared mid-run.
func NewContextStore() *ContextStore {
	return &ContextStore{entries: make(map[string][]any)}
}

// Append adds a payload to the end of a category's log.
func (s *ContextStore) Append(category string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[category] = append(s.entries[category], payload)
}

// Entries returns a snapshot of a category's log in append order.
func (s *ContextStore) Entries(category string) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.entries[category]
	out := make([]any, len(src))
	copy(out, src)
	return out
}

// Categories returns the categories that currently hold entries.
func (s *ContextStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for c := range s.entries {
		out = append(out, c)
	}
	return out
}

// Len returns the number of entries in a category.
func (s *ContextStore) Len(category string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[category])
}

// Snapshot returns a deep-enough copy of the whole store: the map and the
// per-category slices are fresh; payloads themselves are shared (treated as
// immutable once appended).
func (s *ContextStore) Snapshot() map[string][]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]any, len(s.entries))
	for c, list := range s.entries {
		cp := make([]any, len(list))
		copy(cp, list)
		out[c] = cp
	}
	return out
}

// View returns the read-only surface over this store.
func (s *ContextStore) View() ContextView { return contextView{store: s} }

// contextView restricts a ContextStore to its read methods so handlers can
// never mutate shared context directly.
type contextView struct {
	store *ContextStore
}

func (v contextView) Entries(category string) []any { return v.store.Entries(category) }
func (v contextView) Categories() []string          { return v.store.Categories() }
func (v contextView) Len(category string) int       { return v.store.Len(category) }
