// Package history implements ConversationHistory: an ordered sequence of
// turns mutated only by the session state machine, only under the turn
// serializer, and only at well-defined commit points.
package history

import "fmt"

// Role identifies the speaker of a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// PartKind discriminates the tagged variant a Part holds.
type PartKind string

const (
	PartText       PartKind = "text"
	PartToolCall   PartKind = "tool_call"
	PartToolResult PartKind = "tool_result"
)

// Part is a tagged variant: text, tool_call{name, arguments}, or
// tool_result{name, payload}.
type Part struct {
	Kind      PartKind
	Text      string
	Name      string
	Arguments map[string]any
	Payload   map[string]any
}

// TextPart builds a text-kind Part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// ToolCallPart builds a tool_call-kind Part.
func ToolCallPart(name string, args map[string]any) Part {
	return Part{Kind: PartToolCall, Name: name, Arguments: args}
}

// ToolResultPart builds a tool_result-kind Part.
func ToolResultPart(name string, payload map[string]any) Part {
	return Part{Kind: PartToolResult, Name: name, Payload: payload}
}

// Turn is one {role, parts} entry in the conversation history.
type Turn struct {
	Role  Role
	Parts []Part
}

// History is an ordered sequence of turns. It is mutated only by appending
// new turns or truncating to a previously recorded checkpoint length —
// never by in-place edits of existing turns.
type History struct {
	turns []Turn
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Len returns the current number of turns — usable directly as a checkpoint.
func (h *History) Len() int {
	return len(h.turns)
}

// Append adds a turn to the end of the history.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

// Truncate resets the history to the first n turns. It is the only
// supported form of history shrinkage (rollback on cancellation or error).
func (h *History) Truncate(n int) {
	if n < 0 || n > len(h.turns) {
		return
	}
	h.turns = h.turns[:n]
}

// Turns returns a snapshot slice of the current turns. Callers must not
// mutate the returned slice's elements.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Valid reports whether the history is empty or a valid alternating
// sequence beginning with a user turn, where every tool_call part is
// immediately followed by a turn carrying a matching tool_result part with
// the same name.
func (h *History) Valid() error {
	if len(h.turns) == 0 {
		return nil
	}
	if h.turns[0].Role != RoleUser {
		return fmt.Errorf("history: first turn must be user, got %q", h.turns[0].Role)
	}
	for i, turn := range h.turns {
		if i > 0 && turn.Role == h.turns[i-1].Role {
			name, ok := lastToolCallName(h.turns[i-1])
			if !ok || !hasMatchingToolResult(turn, name) {
				return fmt.Errorf("history: turns %d and %d are both %q", i-1, i, turn.Role)
			}
		}
		if name, ok := lastToolCallName(turn); ok {
			if i+1 >= len(h.turns) {
				return fmt.Errorf("history: turn %d has dangling tool_call %q with no following tool_result", i, name)
			}
			if !hasMatchingToolResult(h.turns[i+1], name) {
				return fmt.Errorf("history: turn %d+1 missing tool_result matching tool_call %q", i, name)
			}
		}
	}
	return nil
}

func lastToolCallName(t Turn) (string, bool) {
	for _, p := range t.Parts {
		if p.Kind == PartToolCall {
			return p.Name, true
		}
	}
	return "", false
}

func hasMatchingToolResult(t Turn, name string) bool {
	for _, p := range t.Parts {
		if p.Kind == PartToolResult && p.Name == name {
			return true
		}
	}
	return false
}
