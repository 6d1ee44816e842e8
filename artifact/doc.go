// Package artifact contains concrete implementations of core.ArtifactStore.
//
// The canonical ArtifactStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. The summarizer uses a
// store to park large or binary tool output under a stable reference instead
// of replaying the bytes to the oracle; callers retrieve the raw payload from
// the store after the run if they need it.
package artifact
