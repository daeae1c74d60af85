// Package sessionerr defines the closed error taxonomy shared by the
// streaming primitive and the session state machine (spec §7).
package sessionerr

import "errors"

var (
	// ErrCancelled: a turn was superseded or the session closed. Silent;
	// no outbound frame is emitted.
	ErrCancelled = errors.New("sessionerr: cancelled")

	// ErrTimedOut: the LLM provider did not deliver an initial response
	// within the bound. Treated identically to ErrCancelled for outbound
	// purposes; logged at warning.
	ErrTimedOut = errors.New("sessionerr: timed out")

	// ErrTransport: failure writing to the session transport. Logged; no
	// recovery — the close handler cleans up.
	ErrTransport = errors.New("sessionerr: transport error")

	// ErrProvider: any non-timeout failure from the LLM provider. An
	// apology final frame is emitted iff the token is live and the socket
	// is open.
	ErrProvider = errors.New("sessionerr: provider error")
)
