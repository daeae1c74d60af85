// Package llmstream implements the Cancellable Stream Primitive (spec
// §4.2): it races a streaming LLM request against a caller-owned
// cancellation token and a fixed wall-clock timeout, so the caller's wait
// on the initial response resolves within one scheduling quantum of
// cancellation regardless of the provider's native cancellation support.
package llmstream

import (
	"context"
	"fmt"
	"time"

	"github.com/chadiek/voxline/internal/cancel"
	"github.com/chadiek/voxline/internal/history"
	"github.com/chadiek/voxline/internal/llm"
	"github.com/chadiek/voxline/internal/sessionerr"
)

// DefaultTimeout is the default wall-clock bound on a streaming
// initiation, per spec §4.2/§6.
const DefaultTimeout = 15 * time.Second

// Adapter is the subset of internal/llm.Adapter this primitive depends on.
type Adapter interface {
	Stream(ctx context.Context, h *history.History) (*llm.StreamHandle, error)
}

// Start races adapter.Stream(ctx, h) against token cancellation and
// timeout. It pre-checks the token and fails fast if already cancelled.
// The underlying provider call may continue in the background after this
// function returns a Cancelled/TimedOut error — its output is discarded by
// the caller via history rollback, never consulted.
func Start(ctx context.Context, adapter Adapter, h *history.History, token *cancel.Token, timeout time.Duration) (*llm.StreamHandle, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if token.IsCancelled() {
		return nil, sessionerr.ErrCancelled
	}

	type result struct {
		handle *llm.StreamHandle
		err    error
	}

	outcome := make(chan result, 1)
	abort := make(chan error, 1)

	token.OnCancel(func() {
		select {
		case abort <- sessionerr.ErrCancelled:
		default:
		}
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	callCtx, cancelCall := context.WithCancel(ctx)

	go func() {
		handle, err := adapter.Stream(callCtx, h)
		if err != nil {
			outcome <- result{err: fmt.Errorf("%w: %v", sessionerr.ErrProvider, err)}
			return
		}
		outcome <- result{handle: handle}
	}()

	select {
	case err := <-abort:
		cancelCall()
		return nil, err
	case <-timer.C:
		cancelCall()
		return nil, sessionerr.ErrTimedOut
	case res := <-outcome:
		if res.err != nil {
			cancelCall()
			return nil, res.err
		}
		// The provider keeps streaming into the handle after Start returns;
		// its context is cancelled only when the token is.
		token.OnCancel(cancelCall)
		return res.handle, nil
	}
}
