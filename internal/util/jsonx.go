package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// StripMarkdownFence removes a surrounding ```json / ``` fence from oracle
// output. Models frequently wrap structured payloads in fences even when told
// not to; all parse sites go through this single helper instead of each
// re-implementing the cleanup.
func StripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", ...).
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// DecodeArguments parses a tool call's raw argument payload into a map.
// It is the shared structured-output adapter with a single fallback path:
// empty input yields an empty map, fenced JSON is unfenced, and a payload
// that still fails to parse yields an empty map plus the parse error so the
// caller can log it and proceed best-effort with an empty-argument call.
func DecodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	cleaned := StripMarkdownFence(raw)
	if !gjson.Valid(cleaned) {
		return map[string]any{}, fmt.Errorf("malformed argument payload: %.80q", raw)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(cleaned), &args); err != nil {
		return map[string]any{}, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
