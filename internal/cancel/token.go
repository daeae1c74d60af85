// Package cancel implements the CancellationToken primitive: a terminal,
// monotonic cancel signal with synchronous one-shot listener notification.
package cancel

import "sync"

// Token supports a terminal cancel(), an is_cancelled() query, and the
// ability to register a one-shot listener that fires synchronously when
// cancel is invoked. Once cancelled, it stays cancelled.
type Token struct {
	mu        sync.Mutex
	cancelled bool
	listeners []func()
}

// New returns a live (not cancelled) token.
func New() *Token {
	return &Token{}
}

// Cancel trips the token. Safe to call more than once; only the first call
// has any effect. Registered listeners run synchronously, in registration
// order, before Cancel returns.
func (t *Token) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	listeners := t.listeners
	t.listeners = nil
	t.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// IsCancelled reports whether Cancel has been called.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// OnCancel registers a one-shot listener that fires synchronously on the
// goroutine that calls Cancel. If the token is already cancelled, fn runs
// immediately, synchronously, on the calling goroutine.
func (t *Token) OnCancel(fn func()) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		fn()
		return
	}
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}
