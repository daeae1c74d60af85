package history

import "testing"

func TestEmptyHistoryIsValid(t *testing.T) {
	h := New()
	if err := h.Valid(); err != nil {
		t.Fatalf("empty history should be valid: %v", err)
	}
}

func TestCheckpointAndTruncateRoundTrip(t *testing.T) {
	h := New()
	h.Append(Turn{Role: RoleUser, Parts: []Part{TextPart("hi")}})
	checkpoint := h.Len()
	h.Append(Turn{Role: RoleModel, Parts: []Part{TextPart("hello")}})
	if h.Len() != checkpoint+1 {
		t.Fatalf("expected len %d, got %d", checkpoint+1, h.Len())
	}
	h.Truncate(checkpoint)
	if h.Len() != checkpoint {
		t.Fatalf("truncate did not roll back, len=%d", h.Len())
	}
}

func TestValidRequiresFirstTurnUser(t *testing.T) {
	h := New()
	h.Append(Turn{Role: RoleModel, Parts: []Part{TextPart("hello")}})
	if err := h.Valid(); err == nil {
		t.Fatalf("expected error for model-first history")
	}
}

func TestValidRequiresToolResultFollowsToolCall(t *testing.T) {
	h := New()
	h.Append(Turn{Role: RoleUser, Parts: []Part{TextPart("menu please")}})
	h.Append(Turn{Role: RoleModel, Parts: []Part{ToolCallPart("get_menu", nil)}})
	if err := h.Valid(); err == nil {
		t.Fatalf("expected error for dangling tool_call")
	}
	h.Append(Turn{Role: RoleUser, Parts: []Part{ToolResultPart("get_menu", map[string]any{"menu": "bulgogi"})}})
	if err := h.Valid(); err != nil {
		t.Fatalf("expected valid history with matching tool_result: %v", err)
	}
}

func TestValidRejectsMismatchedToolResultName(t *testing.T) {
	h := New()
	h.Append(Turn{Role: RoleUser, Parts: []Part{TextPart("menu please")}})
	h.Append(Turn{Role: RoleModel, Parts: []Part{ToolCallPart("get_menu", nil)}})
	h.Append(Turn{Role: RoleUser, Parts: []Part{ToolResultPart("place_order", map[string]any{})}})
	if err := h.Valid(); err == nil {
		t.Fatalf("expected error for mismatched tool_result name")
	}
}
