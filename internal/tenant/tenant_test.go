package tenant

import "testing"

func TestSystemPromptJoinsNonEmptySections(t *testing.T) {
	p := StoreProfile{Persona: "Friendly host", Hours: "9am-9pm"}
	got := p.SystemPrompt()
	want := "Friendly host\n\n9am-9pm"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSystemPromptFallsBackWhenAllEmpty(t *testing.T) {
	p := StoreProfile{}
	if p.SystemPrompt() == "" {
		t.Fatalf("expected non-empty fallback persona")
	}
}
