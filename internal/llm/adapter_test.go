package llm

import (
	"context"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/chadiek/voxline/internal/history"
)

// fakeModel implements llms.Model against a canned response, streaming the
// canned text through the caller's StreamingFunc one rune at a time.
type fakeModel struct {
	text     string
	toolCall *llms.ToolCall
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	opts := &llms.CallOptions{}
	for _, o := range options {
		o(opts)
	}
	if opts.StreamingFunc != nil && f.text != "" {
		for _, r := range f.text {
			if err := opts.StreamingFunc(ctx, []byte(string(r))); err != nil {
				return nil, err
			}
		}
	}
	choice := &llms.ContentChoice{Content: f.text}
	if f.toolCall != nil {
		choice.ToolCalls = []llms.ToolCall{*f.toolCall}
		choice.Content = ""
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.text, f.err
}

func TestStreamEmitsChunksThenTerminal(t *testing.T) {
	a := &Adapter{model: &fakeModel{text: "hi"}, systemPrompt: "you are a helpful assistant"}
	h := history.New()
	h.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart("hello")}})

	handle, err := a.Stream(context.Background(), h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	var got string
	for chunk := range handle.Chunks() {
		got += chunk.TextParts()
	}
	if got != "hi" {
		t.Fatalf("expected concatenated chunks %q, got %q", "hi", got)
	}

	term, err := handle.Terminal()
	if err != nil {
		t.Fatalf("terminal: %v", err)
	}
	if term.HasToolCall() {
		t.Fatalf("expected no tool call")
	}
	if term.Text != "hi" {
		t.Fatalf("expected terminal text %q, got %q", "hi", term.Text)
	}
}

// TestStreamDoesNotDeadlockOnBufferOverrun exercises a response longer than
// the chunk channel's fixed buffer (8): if Stream still blocked until the
// whole provider call finished, the 9th streamingFunc send would have no
// concurrent reader and this test would hang forever. Stream must return
// the handle while the background call is still running so the consumer
// below can drain concurrently.
func TestStreamDoesNotDeadlockOnBufferOverrun(t *testing.T) {
	want := "this reply is much longer than eight characters"
	a := &Adapter{model: &fakeModel{text: want}}
	h := history.New()
	h.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart("hi")}})

	handle, err := a.Stream(context.Background(), h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	var got string
	for chunk := range handle.Chunks() {
		got += chunk.TextParts()
	}
	if got != want {
		t.Fatalf("expected concatenated chunks %q, got %q", want, got)
	}
	if _, err := handle.Terminal(); err != nil {
		t.Fatalf("terminal: %v", err)
	}
}

func TestStreamDetectsToolCall(t *testing.T) {
	a := &Adapter{model: &fakeModel{toolCall: &llms.ToolCall{
		FunctionCall: &llms.FunctionCall{Name: "get_menu", Arguments: "{}"},
	}}}
	h := history.New()
	h.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart("show me the menu")}})

	handle, err := a.Stream(context.Background(), h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	for range handle.Chunks() {
	}
	term, err := handle.Terminal()
	if err != nil {
		t.Fatalf("terminal: %v", err)
	}
	if !term.HasToolCall() {
		t.Fatalf("expected tool call")
	}
	if term.ToolCall.Name != "get_menu" {
		t.Fatalf("wrong tool name: %q", term.ToolCall.Name)
	}
}

func TestStreamPropagatesProviderError(t *testing.T) {
	// No chunk ever fires (fakeModel.text is empty), so Stream only unblocks
	// once the background call finishes and fails; the error surfaces
	// through Terminal(), not Stream's own return, since by the time most
	// real provider errors occur the handle may already be handed back.
	a := &Adapter{model: &fakeModel{err: context.DeadlineExceeded}}
	h := history.New()
	h.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart("hi")}})

	handle, err := a.Stream(context.Background(), h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	for range handle.Chunks() {
	}
	if _, err := handle.Terminal(); err == nil {
		t.Fatalf("expected terminal error")
	}
}
