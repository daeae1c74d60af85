// Package llm implements the LLM Client Adapter (spec §4.1): a thin,
// stateless wrapper over the generative model provider exposing one
// streaming call that takes a full conversation history and returns a
// chunk stream plus an aggregated terminal response.
//
// The provider is reached through langchaingo's OpenAI-compatible client
// pointed at Cerebras's chat-completions endpoint, preserving the
// environment variable names the original Cerebras client used
// (CEREBRAS_API_KEY / CEREBRAS_MODEL_ID) while gaining real token
// streaming and native tool-call schemas.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/chadiek/voxline/internal/history"
)

// Chunk is one incremental fragment of a streaming response.
type Chunk struct {
	TextDelta string
}

// TextParts returns the non-empty text contained in the chunk. Defined as
// a method (rather than a bare field) to mirror the provider-agnostic
// "text_parts() filter" the spec describes on each chunk.
func (c Chunk) TextParts() string {
	return c.TextDelta
}

// ToolCall is a structured tool invocation the model requested.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Terminal is the aggregated response available once a stream drains. It
// carries either accumulated text or a single tool call, never both.
type Terminal struct {
	Text     string
	ToolCall *ToolCall
}

// HasToolCall reports whether the terminal response is a tool invocation.
func (t Terminal) HasToolCall() bool {
	return t.ToolCall != nil
}

// StreamHandle exposes a finite, non-restartable sequence of chunks and the
// aggregated terminal response available after the sequence drains.
type StreamHandle struct {
	chunks   chan Chunk
	done     chan struct{}
	terminal Terminal
	err      error
}

// Chunks returns the channel of incremental chunks. It closes once the
// underlying call completes or fails.
func (h *StreamHandle) Chunks() <-chan Chunk {
	return h.chunks
}

// Terminal blocks until the stream has fully drained and returns the
// aggregated terminal response, or the error the underlying call failed
// with.
func (h *StreamHandle) Terminal() (Terminal, error) {
	<-h.done
	return h.terminal, h.err
}

// NewFakeStreamHandle builds an already-drained StreamHandle from canned
// chunks/terminal/err, for fakes in other packages' tests (session,
// llmstream) that depend on LLMAdapter-shaped interfaces but must not
// reach a real provider.
func NewFakeStreamHandle(chunks []Chunk, terminal Terminal, err error) *StreamHandle {
	h := &StreamHandle{
		chunks: make(chan Chunk, len(chunks)),
		done:   make(chan struct{}),
	}
	for _, c := range chunks {
		h.chunks <- c
	}
	close(h.chunks)
	h.terminal = terminal
	h.err = err
	close(h.done)
	return h
}

// ToolSchema declares one tool the model may invoke.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Adapter is a stateless, provider-bound handle: history in, stream out.
// The system prompt and tool schema are fixed at construction so that each
// Stream call is independent and our history remains authoritative.
type Adapter struct {
	model        llms.Model
	systemPrompt string
	tools        []llms.Tool
}

// Config carries the provider connection details.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// New constructs an Adapter bound to systemPrompt and toolSchemas.
func New(cfg Config, systemPrompt string, toolSchemas []ToolSchema) (*Adapter, error) {
	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: construct provider client: %w", err)
	}

	tools := make([]llms.Tool, 0, len(toolSchemas))
	for _, ts := range toolSchemas {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        ts.Name,
				Description: ts.Description,
				Parameters:  ts.Parameters,
			},
		})
	}

	return &Adapter{model: model, systemPrompt: systemPrompt, tools: tools}, nil
}

// Stream issues one streaming generation request over the full history.
// The underlying provider call runs in a background goroutine that keeps
// running after Stream returns: Stream only blocks until the provider
// delivers its first chunk (or, for a response with no progressive text,
// until the call finishes) so the Cancellable Stream Primitive's timeout
// bounds the first response, not the full drain (spec §4.2). Later chunks
// keep populating the handle's channel concurrently; underlying transport
// errors surface through the handle (Terminal), not this call's return
// value, since by the time most errors occur the handle has already been
// handed back to the caller.
func (a *Adapter) Stream(ctx context.Context, h *history.History) (*StreamHandle, error) {
	messages := a.toMessages(h)

	handle := &StreamHandle{
		chunks: make(chan Chunk, 8),
		done:   make(chan struct{}),
	}

	started := make(chan struct{})
	var startOnce sync.Once
	signalStarted := func() { startOnce.Do(func() { close(started) }) }

	streamingFunc := func(ctx context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		select {
		case handle.chunks <- Chunk{TextDelta: string(chunk)}:
			signalStarted()
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	go func() {
		resp, err := a.model.GenerateContent(ctx, messages,
			llms.WithTools(a.tools),
			llms.WithStreamingFunc(streamingFunc),
		)
		close(handle.chunks)
		if err != nil {
			handle.err = fmt.Errorf("llm: generate content: %w", err)
		} else {
			handle.terminal = terminalFromResponse(resp)
		}
		close(handle.done)
		signalStarted()
	}()

	<-started
	return handle, nil
}

func (a *Adapter) toMessages(h *history.History) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, h.Len()+1)
	if a.systemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: a.systemPrompt}},
		})
	}

	for _, turn := range h.Turns() {
		role := llms.ChatMessageTypeHuman
		if turn.Role == history.RoleModel {
			role = llms.ChatMessageTypeAI
		}

		var parts []llms.ContentPart
		for _, p := range turn.Parts {
			switch p.Kind {
			case history.PartText:
				parts = append(parts, llms.TextContent{Text: p.Text})
			case history.PartToolCall:
				parts = append(parts, llms.ToolCall{
					ID:   p.Name,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      p.Name,
						Arguments: encodeArgs(p.Arguments),
					},
				})
			case history.PartToolResult:
				role = llms.ChatMessageTypeTool
				parts = append(parts, llms.ToolCallResponse{
					ToolCallID: p.Name,
					Name:       p.Name,
					Content:    encodeArgs(p.Payload),
				})
			}
		}
		messages = append(messages, llms.MessageContent{Role: role, Parts: parts})
	}
	return messages
}

func terminalFromResponse(resp *llms.ContentResponse) Terminal {
	if resp == nil || len(resp.Choices) == 0 {
		return Terminal{}
	}
	choice := resp.Choices[0]
	if len(choice.ToolCalls) > 0 {
		call := choice.ToolCalls[0]
		args, _ := decodeArgs(call.FunctionCall.Arguments)
		return Terminal{ToolCall: &ToolCall{Name: call.FunctionCall.Name, Args: args}}
	}
	return Terminal{Text: choice.Content}
}
