// Package session implements the Session State Machine (spec §4.5), the
// centerpiece of the core session engine. Per voice connection it owns
// conversation history, the current cancellation token, the
// generation-in-progress flag, and the turn serializer; it consumes
// inbound protocol frames, distinguishes routine transcript pushes from
// genuine barge-ins, drives the two-phase tool-calling flow, performs
// history checkpoint/rollback on cancellation or error, and emits outbound
// streaming frames to the voice transport.
//
// Grounded on the teacher's internal/agent/session.go: the mutex-guarded
// state, the cancel-on-barge-in pattern, and the "one background loop per
// connection" shape are kept; raw PCM/TTS streaming is replaced with JSON
// frame emission and tagged-part history per SPEC_FULL.md.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/chadiek/voxline/internal/cancel"
	"github.com/chadiek/voxline/internal/history"
	"github.com/chadiek/voxline/internal/llmstream"
	"github.com/chadiek/voxline/internal/protocol"
	"github.com/chadiek/voxline/internal/sessionerr"
	"github.com/chadiek/voxline/internal/turnqueue"
)

// nudgeMessage is emitted when a response_required frame carries an empty
// transcript (spec §4.5.3 step 3).
const nudgeMessage = "I'm listening…"

// apologyMessage is emitted when a turn task fails for a reason other than
// cancellation or timeout (spec §4.5.3 step 10, §7).
const apologyMessage = "I'm sorry, could you please say that again?"

// greetingUserPrompt is the hidden, ephemeral prompt used to produce the
// unsolicited opening utterance (spec §4.5.4). It is never committed to
// history.
const greetingUserPrompt = "Greet the caller warmly and briefly, in character, and ask how you can help."

// Config bundles everything Open needs to construct a Session.
type Config struct {
	TenantID  string
	CallID    string
	Adapter   LLMAdapter
	Dispatcher ToolDispatcher
	Transport Transport
	Timeout   time.Duration
}

// Session is the per-connection object described by spec §3.
type Session struct {
	tenantID string
	callID   string

	adapter    LLMAdapter
	dispatcher ToolDispatcher
	transport  Transport
	timeout    time.Duration

	history *history.History

	mu            sync.Mutex
	currentToken  *cancel.Token
	isGenerating  bool

	queue *turnqueue.Queue
}

// Open constructs a Session and enqueues the greeting task (spec §4.5.1
// step 1, "Open"). Tenant resolution, system-prompt composition, and LLM
// adapter construction happen in the caller (api/http's voiceSession
// handler) before Open is called, since those steps can fail
// with a ConfigError that must close the connection before any turn runs.
func Open(cfg Config) *Session {
	if cfg.Timeout <= 0 {
		cfg.Timeout = llmstream.DefaultTimeout
	}
	s := &Session{
		tenantID:  cfg.TenantID,
		callID:    cfg.CallID,
		adapter:   cfg.Adapter,
		dispatcher: cfg.Dispatcher,
		transport: cfg.Transport,
		timeout:   cfg.Timeout,
		history:   history.New(),
		queue:     turnqueue.New(),
	}
	s.enqueueGreeting()
	return s
}

// Close trips the in-flight token (if any) and lets the queue drain, then
// releases the session (spec §4.5.1 step 3, "Close").
func (s *Session) Close() {
	s.mu.Lock()
	tok := s.currentToken
	s.mu.Unlock()
	if tok != nil {
		tok.Cancel()
	}
	s.queue.Close()
}

// History returns the session's live history (not a copy), for tests and
// diagnostics. Callers must not mutate it.
func (s *Session) History() *history.History {
	return s.history
}

// IsGenerating reports whether a turn task currently holds the generation
// lock. Exposed for tests verifying the freeze-prevention invariant.
func (s *Session) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isGenerating
}

// setGenerating is the only place is_generating is mutated.
func (s *Session) setGenerating(v bool) {
	s.mu.Lock()
	s.isGenerating = v
	s.mu.Unlock()
}

// HandleInbound classifies and dispatches one inbound frame (spec §4.5.2).
func (s *Session) HandleInbound(frame protocol.Inbound) {
	switch frame.InteractionType {
	case protocol.InteractionUpdateOnly:
		s.handleUpdateOnly(frame)
	case protocol.InteractionResponseRequired:
		s.handleResponseRequired(frame)
	default:
		// ping, call-ended, etc. — ignored silently.
	}
}

func (s *Session) handleUpdateOnly(frame protocol.Inbound) {
	if !frame.IsBargeIn() {
		return
	}
	s.mu.Lock()
	generating := s.isGenerating
	tok := s.currentToken
	s.mu.Unlock()
	if generating && tok != nil {
		tok.Cancel()
	}
}

func (s *Session) handleResponseRequired(frame protocol.Inbound) {
	tok := cancel.New()
	s.mu.Lock()
	s.currentToken = tok
	s.mu.Unlock()

	s.queue.Enqueue(func() {
		s.runTurnTask(frame.ResponseID, frame.LastUserTranscript(), tok)
	})
}

func (s *Session) enqueueGreeting() {
	tok := cancel.New()
	s.mu.Lock()
	s.currentToken = tok
	s.mu.Unlock()

	s.queue.Enqueue(func() {
		s.runGreetingTask(tok)
	})
}

// liveToken reports whether tok is still the session's current token —
// the stale-task short-circuit shared by both task kinds (spec §3
// "TurnQueue", §4.5.3 step 1).
func (s *Session) liveToken(tok *cancel.Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentToken == tok
}

// runTurnTask implements the two-phase function-calling flow (spec
// §4.5.3). is_generating's release is expressed as a deferred action so
// every exit path — normal, cancelled, stream error, tool dispatcher
// failure, transport write error — traverses it (the central
// freeze-prevention invariant, spec §4.5.3 step 9 / §5).
func (s *Session) runTurnTask(responseID int, transcript string, tok *cancel.Token) {
	if !s.liveToken(tok) {
		return
	}

	s.setGenerating(true)
	defer s.setGenerating(false)

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.emit(responseID, nudgeMessage, true)
		return
	}

	checkpoint := s.history.Len()
	s.history.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart(transcript)}})

	aggregate, err := s.runPhase(responseID, tok, checkpoint)
	if err != nil {
		s.handleTurnError(responseID, tok, checkpoint, err)
		return
	}

	if aggregate.toolCall == nil {
		s.history.Append(history.Turn{Role: history.RoleModel, Parts: []history.Part{history.TextPart(aggregate.text)}})
		s.emit(responseID, "", true)
		return
	}

	s.history.Append(history.Turn{
		Role:  history.RoleModel,
		Parts: []history.Part{history.ToolCallPart(aggregate.toolCall.Name, aggregate.toolCall.Args)},
	})

	payload := s.dispatcher.Dispatch(context.Background(), aggregate.toolCall.Name, aggregate.toolCall.Args)

	if tok.IsCancelled() {
		s.history.Truncate(checkpoint)
		return
	}

	s.history.Append(history.Turn{
		Role:  history.RoleUser,
		Parts: []history.Part{history.ToolResultPart(aggregate.toolCall.Name, payload)},
	})

	phase2, err := s.runPhase(responseID, tok, checkpoint)
	if err != nil {
		s.handleTurnError(responseID, tok, checkpoint, err)
		return
	}

	s.history.Append(history.Turn{Role: history.RoleModel, Parts: []history.Part{history.TextPart(phase2.text)}})
	s.emit(responseID, "", true)
}

// phaseResult is the aggregated outcome of one streaming phase.
type phaseResult struct {
	text     string
	toolCall *toolCallResult
}

type toolCallResult struct {
	Name string
	Args map[string]any
}

// runPhase drives one streaming LLM call end to end: emit partial frames
// for each chunk while the token is live, then drain the terminal
// response (spec §4.5.3 steps 5–7, reused identically for phase 2).
func (s *Session) runPhase(responseID int, tok *cancel.Token, checkpoint int) (phaseResult, error) {
	handle, err := llmstream.Start(context.Background(), s.adapter, s.history, tok, s.timeout)
	if err != nil {
		return phaseResult{}, err
	}

	var aggregate strings.Builder
	for chunk := range handle.Chunks() {
		if tok.IsCancelled() {
			break
		}
		text := chunk.TextParts()
		if text == "" {
			continue
		}
		aggregate.WriteString(text)
		s.emit(responseID, text, false)
	}

	terminal, err := handle.Terminal()
	if err != nil {
		return phaseResult{}, err
	}
	if tok.IsCancelled() {
		return phaseResult{}, sessionerr.ErrCancelled
	}

	if terminal.HasToolCall() {
		return phaseResult{toolCall: &toolCallResult{Name: terminal.ToolCall.Name, Args: terminal.ToolCall.Args}}, nil
	}
	text := terminal.Text
	if text == "" {
		text = aggregate.String()
	}
	return phaseResult{text: text}, nil
}

// handleTurnError implements spec §4.5.3 step 10 / §7's error class
// distinction: Cancelled/TimedOut roll back and exit silently; any other
// error rolls back and voices an apology, provided the token is still live
// and the socket is open.
func (s *Session) handleTurnError(responseID int, tok *cancel.Token, checkpoint int, err error) {
	s.history.Truncate(checkpoint)

	if errors.Is(err, sessionerr.ErrCancelled) || errors.Is(err, sessionerr.ErrTimedOut) {
		log.Printf("[%s/%s] turn %d: %v", s.tenantID, s.callID, responseID, err)
		return
	}

	log.Printf("[%s/%s] turn %d: %v", s.tenantID, s.callID, responseID, err)
	if tok.IsCancelled() || s.transport.Closed() {
		return
	}
	s.emit(responseID, apologyMessage, true)
}

// runGreetingTask implements spec §4.5.4: a single-phase, ephemeral turn
// whose prompt and reply are never committed to history. Unlike a normal
// turn task (only cancelled by an explicit barge-in on its own token), the
// greeting is cancellable by an early response_required: once its stream
// has started it rechecks session-level liveness (liveToken), not just its
// own token's cancelled flag, before each chunk and before the final frame.
// The initial wait for the stream is not cut short by a response_required;
// it ends only on the greeting's own token, the timeout, or the provider.
func (s *Session) runGreetingTask(tok *cancel.Token) {
	if !s.liveToken(tok) {
		return
	}

	s.setGenerating(true)
	defer s.setGenerating(false)

	ephemeral := history.New()
	ephemeral.Append(history.Turn{Role: history.RoleUser, Parts: []history.Part{history.TextPart(greetingUserPrompt)}})

	handle, err := llmstream.Start(context.Background(), s.adapter, ephemeral, tok, s.timeout)
	if err != nil {
		if errors.Is(err, sessionerr.ErrCancelled) || errors.Is(err, sessionerr.ErrTimedOut) {
			return
		}
		log.Printf("[%s/%s] greeting: %v", s.tenantID, s.callID, err)
		return
	}

	for chunk := range handle.Chunks() {
		if !s.liveToken(tok) {
			break
		}
		text := chunk.TextParts()
		if text == "" {
			continue
		}
		s.emit(0, text, false)
	}

	if _, err := handle.Terminal(); err != nil || !s.liveToken(tok) {
		return
	}
	s.emit(0, "", true)
}

// emit writes one outbound frame, silently no-op'ing on a closed socket
// (spec §4.5.5).
func (s *Session) emit(responseID int, content string, complete bool) {
	if s.transport.Closed() {
		return
	}
	frame := protocol.NewOutbound(responseID, content, complete)
	if err := s.transport.Send(frame); err != nil {
		log.Printf("[%s/%s] %s: %v", s.tenantID, s.callID, sessionerr.ErrTransport, err)
	}
}
