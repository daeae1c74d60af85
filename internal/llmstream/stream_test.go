package llmstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chadiek/voxline/internal/cancel"
	"github.com/chadiek/voxline/internal/history"
	"github.com/chadiek/voxline/internal/llm"
	"github.com/chadiek/voxline/internal/sessionerr"
)

type fakeAdapter struct {
	delay  time.Duration
	handle *llm.StreamHandle
	err    error
}

func (f *fakeAdapter) Stream(ctx context.Context, h *history.History) (*llm.StreamHandle, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.handle, nil
}

func TestStartPreCancelledFailsFast(t *testing.T) {
	tok := cancel.New()
	tok.Cancel()
	_, err := Start(context.Background(), &fakeAdapter{delay: time.Hour}, history.New(), tok, time.Second)
	if !errors.Is(err, sessionerr.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestStartCancelledDuringWait(t *testing.T) {
	tok := cancel.New()
	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		tok.Cancel()
		close(done)
	}()
	_, err := Start(context.Background(), &fakeAdapter{delay: time.Hour}, history.New(), tok, time.Second)
	<-done
	if !errors.Is(err, sessionerr.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestStartTimesOut(t *testing.T) {
	tok := cancel.New()
	_, err := Start(context.Background(), &fakeAdapter{delay: time.Hour}, history.New(), tok, 10*time.Millisecond)
	if !errors.Is(err, sessionerr.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
}

func TestStartSucceeds(t *testing.T) {
	tok := cancel.New()
	_, err := Start(context.Background(), &fakeAdapter{delay: 0, handle: nil}, history.New(), tok, time.Second)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestStartPropagatesProviderError(t *testing.T) {
	tok := cancel.New()
	_, err := Start(context.Background(), &fakeAdapter{err: errors.New("boom")}, history.New(), tok, time.Second)
	if !errors.Is(err, sessionerr.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}
