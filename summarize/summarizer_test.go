package summarize

import (
	"strings"
	"testing"

	"github.com/agentloop/agentloop/artifact"
	"github.com/agentloop/agentloop/core"
)

func shapedMap(t *testing.T, r core.ToolResult) map[string]any {
	t.Helper()
	m, ok := r.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected map value, got %T", r.Value)
	}
	return m
}

func TestShape_TruncatesLongStrings(t *testing.T) {
	s := New()
	long := strings.Repeat("a", 3000)
	in := core.ToolResult{ToolCallID: "c1", Name: "fetch", Success: true, Value: map[string]any{"body": long, "short": "keep"}}

	out := shapedMap(t, s.Shape("run-1", in))
	body := out["body"].(string)
	if len(body) != DefaultMaxTextLen+len(TruncationMarker) {
		t.Fatalf("unexpected truncated length %d", len(body))
	}
	if !strings.HasSuffix(body, TruncationMarker) {
		t.Fatal("expected truncation marker")
	}
	if out["short"] != "keep" {
		t.Fatalf("short strings must pass through, got %v", out["short"])
	}
}

func TestShape_CapsLongLists(t *testing.T) {
	s := New()
	list := make([]any, 80)
	for i := range list {
		list[i] = i
	}
	in := core.ToolResult{ToolCallID: "c1", Name: "search", Success: true, Value: map[string]any{"hits": list}}

	out := shapedMap(t, s.Shape("run-1", in))
	if got := len(out["hits"].([]any)); got != DefaultMaxListLen {
		t.Fatalf("expected %d elements, got %d", DefaultMaxListLen, got)
	}
}

func TestShape_ElidesBinaryFields(t *testing.T) {
	store := artifact.NewInMemoryStore()
	s := New(func(o *Options) { o.Artifacts = store })

	payload := strings.Repeat("iVBOR", 1000)
	in := core.ToolResult{ToolCallID: "c1", Name: "screenshot", Success: true, Value: map[string]any{
		"image_base64": payload,
		"caption":      "front page",
	}}

	out := shapedMap(t, s.Shape("run-1", in))
	if _, present := out["image_base64"]; present {
		t.Fatal("binary payload must not survive shaping")
	}
	if out["has_image_base64"] != true {
		t.Fatal("expected presence flag")
	}
	ref, _ := out["image_base64_ref"].(string)
	if ref != "artifact:c1/image_base64" {
		t.Fatalf("unexpected artifact reference %q", ref)
	}

	// The raw bytes were parked in the store.
	data, err := store.Get("run-1", "c1/image_base64")
	if err != nil {
		t.Fatalf("parked payload missing: %v", err)
	}
	if string(data) != payload {
		t.Fatal("parked payload corrupted")
	}
}

func TestShape_BinaryFieldWithoutStore(t *testing.T) {
	s := New()
	in := core.ToolResult{ToolCallID: "c1", Name: "shot", Success: true, Value: map[string]any{"image_base64": "abc"}}

	out := shapedMap(t, s.Shape("run-1", in))
	if out["has_image_base64"] != true {
		t.Fatal("expected presence flag")
	}
	if _, present := out["image_base64_ref"]; present {
		t.Fatal("no reference without a configured store")
	}
}

func TestShape_RecursesIntoNestedStructures(t *testing.T) {
	s := New(func(o *Options) { o.MaxTextLen = 10 })
	in := core.ToolResult{ToolCallID: "c1", Name: "t", Success: true, Value: map[string]any{
		"outer": map[string]any{
			"items": []any{
				map[string]any{"text": strings.Repeat("x", 50)},
			},
		},
	}}

	out := shapedMap(t, s.Shape("run-1", in))
	nested := out["outer"].(map[string]any)["items"].([]any)[0].(map[string]any)["text"].(string)
	if len(nested) != 10+len(TruncationMarker) {
		t.Fatalf("nested string not truncated, len=%d", len(nested))
	}
}

func TestShape_DoesNotMutateInput(t *testing.T) {
	s := New(func(o *Options) { o.MaxTextLen = 5 })
	original := map[string]any{"text": "a long enough string"}
	in := core.ToolResult{ToolCallID: "c1", Name: "t", Success: true, Value: original}

	s.Shape("run-1", in)
	if original["text"] != "a long enough string" {
		t.Fatalf("input mutated: %v", original["text"])
	}
}

func TestShape_NilAndScalarValues(t *testing.T) {
	s := New()
	in := core.ToolResult{ToolCallID: "c1", Name: "t", Success: true}
	if out := s.Shape("run-1", in); out.Value != nil {
		t.Fatalf("nil stays nil, got %v", out.Value)
	}
	in.Value = 42
	if out := s.Shape("run-1", in); out.Value != 42 {
		t.Fatalf("scalars pass through, got %v", out.Value)
	}
}

func TestBrief(t *testing.T) {
	cases := []struct {
		name   string
		result core.ToolResult
		want   string
	}{
		{
			name:   "failure",
			result: core.ToolResult{Success: false, Error: "unknown tool: ghost"},
			want:   "Error: unknown tool: ghost",
		},
		{
			name:   "options",
			result: core.ToolResult{Success: true, Value: map[string]any{"total_options": 3}},
			want:   "Found 3 options",
		},
		{
			name:   "feasibility",
			result: core.ToolResult{Success: true, Value: map[string]any{"is_feasible": true}},
			want:   "Feasible: true",
		},
		{
			name:   "cost",
			result: core.ToolResult{Success: true, Value: map[string]any{"total_estimated_cost": 1240}},
			want:   "Total cost: $1240",
		},
		{
			name:   "itinerary",
			result: core.ToolResult{Success: true, Value: map[string]any{"days": []any{1, 2, 3}}},
			want:   "Generated 3-day itinerary",
		},
		{
			name:   "plain",
			result: core.ToolResult{Success: true, Value: "text"},
			want:   "Completed successfully",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Brief(tc.result); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
