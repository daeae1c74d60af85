// Package transport implements the voice transport connection (spec §3
// "Transport", §4.5.1/§6): a gorilla/websocket JSON frame reader/writer
// bound to one Session, at path /voice/{call_id}?tenant_id={id}.
//
// Grounded on the teacher's internal/rtc/ws_signaling.go for the
// upgrade/read-loop/write-serialization shape; the WebRTC/Opus media
// plumbing it built around that loop is replaced with plain JSON frames
// per SPEC_FULL.md's protocol.
package transport

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chadiek/voxline/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn is a session.Transport backed by one upgraded websocket connection.
// Writes are serialized with a mutex since gorilla/websocket forbids
// concurrent writers on the same connection; the Session's own emit calls
// already run on a single turn-queue worker, but Close can race a
// still-flushing final frame.
type Conn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

// Upgrade upgrades r/w to a websocket connection. The caller owns the
// returned *Conn until it closes it.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// Send implements session.Transport.
func (c *Conn) Send(frame protocol.Outbound) error {
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Closed implements session.Transport.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close tears down the underlying connection, optionally sending a close
// frame with code first (spec §4.5.1 "Close", protocol.CloseCodePolicyViolation /
// protocol.CloseCodeUnsupportedData for protocol-violation teardown).
func (c *Conn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if code != 0 {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	_ = c.ws.Close()
}

// ReadLoop blocks reading inbound frames and invoking handle for each,
// returning when the connection errors or closes. It never panics on a
// malformed frame — per spec, a decode failure closes the connection with
// CloseCodeUnsupportedData rather than tearing down the whole process.
func (c *Conn) ReadLoop(handle func(protocol.Inbound)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !isExpectedCloseErr(err) {
				log.Printf("transport: read error: %v", err)
			}
			return
		}
		frame, err := protocol.DecodeInbound(data)
		if err != nil {
			log.Printf("transport: decode error: %v", err)
			c.Close(protocol.CloseCodeUnsupportedData, "unsupported data")
			return
		}
		handle(frame)
	}
}

func isExpectedCloseErr(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, websocket.ErrCloseSent)
}
