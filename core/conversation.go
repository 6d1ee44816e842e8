package core

// Conversation is the append-only ordered sequence of turns replayed to the
// oracle every iteration. It is owned exclusively by one orchestration run
// and discarded at run end unless the caller captures it via the RunResult.
//
// Turns are only ever appended; existing contents are never mutated or
// removed. Contents returns a snapshot so oracle adapters cannot alias the
// backing slice.
type Conversation struct {
	turns []Content
}

// NewConversation creates a conversation seeded with a system turn (when
// instructions are non-empty) followed by the initial user turn.
func NewConversation(instructions, userPrompt string) *Conversation {
	c := &Conversation{}
	if instructions != "" {
		c.append(Content{Role: "system", Parts: []Part{TextPart{Text: instructions}}})
	}
	c.append(Content{Role: "user", Parts: []Part{TextPart{Text: userPrompt}}})
	return c
}

func (c *Conversation) append(turn Content) { c.turns = append(c.turns, turn) }

// AppendAssistant records an oracle turn: optional natural-language content
// plus zero or more tool calls.
func (c *Conversation) AppendAssistant(text string, calls []ToolCall) {
	parts := make([]Part, 0, len(calls)+1)
	if text != "" {
		parts = append(parts, TextPart{Text: text})
	}
	for _, call := range calls {
		parts = append(parts, ToolCallPart{ToolCall: call})
	}
	c.append(Content{Role: "assistant", Parts: parts})
}

// AppendToolResults records one tool turn carrying the (summarized) results
// for every call the previous assistant turn issued. The oracle's turn-taking
// protocol requires a reply for every call, so callers must pass exactly one
// result per issued call, failed ones included.
func (c *Conversation) AppendToolResults(results []ToolResult) {
	parts := make([]Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, ToolResultPart{ToolResult: r})
	}
	c.append(Content{Role: "tool", Parts: parts})
}

// Contents returns a snapshot copy of all turns in order.
func (c *Conversation) Contents() []Content {
	out := make([]Content, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns recorded so far.
func (c *Conversation) Len() int { return len(c.turns) }

// LastAssistantText returns the text of the most recent assistant turn,
// or "" when none exists.
func (c *Conversation) LastAssistantText() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == "assistant" {
			if t := c.turns[i].Text(); t != "" {
				return t
			}
		}
	}
	return ""
}
