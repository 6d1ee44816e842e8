package core

// ArtifactStore persists opaque byte payloads produced during a run, keyed by
// run id + artifact id. The summarizer parks large/binary tool output here and
// replaces it with a stable symbolic reference the oracle can cite without
// reproducing the bytes.
type ArtifactStore interface {
	Save(runID, artifactID string, data []byte) error
	Get(runID, artifactID string) ([]byte, error)
	List(runID string) ([]string, error)
	Delete(runID, artifactID string) error
}
