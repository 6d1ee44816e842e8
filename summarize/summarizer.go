// Package summarize shapes raw tool results before they re-enter the
// conversation, keeping the oracle's working memory bounded: binary payloads
// become presence flags plus stable artifact references, long strings are
// truncated with an explicit marker, and long sequences are capped. Terminal
// tool output is exempt because it IS the deliverable, not material for
// further reasoning.
package summarize

import (
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/logging"
)

const (
	// DefaultMaxTextLen is the character budget for a single string field.
	DefaultMaxTextLen = 2000
	// DefaultMaxListLen is the element budget for a single sequence.
	DefaultMaxListLen = 50
)

// TruncationMarker is appended to any string cut at the character budget.
const TruncationMarker = "..."

// Options configure a Summarizer.
type Options struct {
	MaxTextLen int
	MaxListLen int
	// BinaryFields lists map keys whose values are large/binary encoded
	// payloads (e.g. base64 images). Matching fields are replaced by a
	// has_<field> flag and, when an artifact store is configured, a
	// symbolic reference the oracle can cite without reproducing the bytes.
	BinaryFields []string
	// Artifacts optionally receives the raw bytes of elided binary fields.
	Artifacts core.ArtifactStore
	Logger    logging.Logger
}

// Summarizer rewrites tool result payloads to fit the oracle's working-memory
// budget. It is stateless apart from configuration and safe for concurrent
// use by a batch of parallel tool completions.
type Summarizer struct {
	maxTextLen   int
	maxListLen   int
	binaryFields map[string]bool
	artifacts    core.ArtifactStore
	logger       logging.Logger
}

// New constructs a Summarizer with sample-derived defaults (2000 chars,
// 50 elements, image_base64 elision).
func New(optFns ...func(o *Options)) *Summarizer {
	opts := Options{
		MaxTextLen:   DefaultMaxTextLen,
		MaxListLen:   DefaultMaxListLen,
		BinaryFields: []string{"image_base64"},
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	binary := make(map[string]bool, len(opts.BinaryFields))
	for _, f := range opts.BinaryFields {
		binary[f] = true
	}

	return &Summarizer{
		maxTextLen:   opts.MaxTextLen,
		maxListLen:   opts.MaxListLen,
		binaryFields: binary,
		artifacts:    opts.Artifacts,
		logger:       opts.Logger,
	}
}

// Shape returns a copy of the result whose Value fits the working-memory
// budget. The input result is never mutated; raw values stay intact in the
// ContextStore and the run ledger.
func (s *Summarizer) Shape(runID string, result core.ToolResult) core.ToolResult {
	if result.Value == nil {
		return result
	}
	shaped := result
	shaped.Value = s.shapeValue(runID, result.ToolCallID, result.Value)
	return shaped
}

func (s *Summarizer) shapeValue(runID, callID string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		shaped := make(map[string]any, len(val))
		for key, inner := range val {
			if s.binaryFields[key] {
				if text, ok := inner.(string); ok && text != "" {
					shaped["has_"+key] = true
					if ref := s.parkBytes(runID, callID, key, text); ref != "" {
						shaped[key+"_ref"] = ref
					}
				}
				continue
			}
			shaped[key] = s.shapeValue(runID, callID, inner)
		}
		return shaped

	case []any:
		capped := val
		if len(capped) > s.maxListLen {
			capped = capped[:s.maxListLen]
		}
		shaped := make([]any, len(capped))
		for i, item := range capped {
			shaped[i] = s.shapeValue(runID, callID, item)
		}
		return shaped

	case string:
		if len(val) > s.maxTextLen {
			return val[:s.maxTextLen] + TruncationMarker
		}
		return val

	default:
		return v
	}
}

// parkBytes stores an elided payload in the artifact store and returns the
// symbolic reference, or "" when no store is configured. The reference is
// stable for the run: derived from the call id and field name, never from
// the payload contents.
func (s *Summarizer) parkBytes(runID, callID, field, payload string) string {
	if s.artifacts == nil {
		return ""
	}
	id := fmt.Sprintf("%s/%s", callID, field)
	if err := s.artifacts.Save(runID, id, []byte(payload)); err != nil {
		s.logger.Warn("summarize.artifact.save_failed", "artifact_id", id, "error", err.Error())
		return ""
	}
	return "artifact:" + id
}

// Brief produces the one-line ledger summary of a result, mirroring the keys
// the sample agents surfaced (option counts, feasibility, cost, day plans).
func Brief(result core.ToolResult) string {
	if !result.Success {
		return fmt.Sprintf("Error: %s", result.Error)
	}
	m, ok := result.Value.(map[string]any)
	if !ok {
		return "Completed successfully"
	}
	if v, ok := m["total_options"]; ok {
		return fmt.Sprintf("Found %v options", v)
	}
	if v, ok := m["is_feasible"]; ok {
		return fmt.Sprintf("Feasible: %v", v)
	}
	if v, ok := m["total_estimated_cost"]; ok {
		return fmt.Sprintf("Total cost: $%v", v)
	}
	if days, ok := m["days"].([]any); ok {
		return fmt.Sprintf("Generated %d-day itinerary", len(days))
	}
	return "Completed successfully"
}
