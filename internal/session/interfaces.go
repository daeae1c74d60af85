package session

import (
	"context"

	"github.com/chadiek/voxline/internal/history"
	"github.com/chadiek/voxline/internal/llm"
	"github.com/chadiek/voxline/internal/protocol"
)

// LLMAdapter is the subset of internal/llm.Adapter the session depends on,
// narrowed so tests can supply a fake (teacher's internal/agent/types.go
// idiom: small interfaces, hand-written fakes, no mocking framework).
type LLMAdapter interface {
	Stream(ctx context.Context, h *history.History) (*llm.StreamHandle, error)
}

// Transport is the outbound half of the session's voice transport
// connection. Writes to a non-open socket silently no-op (spec §4.5.5);
// implementations must honor that themselves.
type Transport interface {
	Send(frame protocol.Outbound) error
	Closed() bool
}

// ToolDispatcher is the subset of internal/tools.Dispatcher the session
// depends on. It is guaranteed not to raise (spec §4.3).
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) map[string]any
}
