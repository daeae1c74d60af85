package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chadiek/voxline/internal/protocol"
)

func TestConnSendAndReadLoopRoundTrip(t *testing.T) {
	received := make(chan protocol.Inbound, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		if err := conn.Send(protocol.NewOutbound(1, "hello", true)); err != nil {
			t.Errorf("Send: %v", err)
		}
		conn.ReadLoop(func(in protocol.Inbound) {
			received <- in
		})
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if !strings.Contains(string(data), `"content":"hello"`) {
		t.Fatalf("unexpected frame body: %s", data)
	}

	if err := client.WriteJSON(protocol.Inbound{
		InteractionType: protocol.InteractionResponseRequired,
		ResponseID:      2,
		Transcript:      []protocol.TranscriptEntry{{Role: "user", Content: "hi"}},
	}); err != nil {
		t.Fatalf("client write: %v", err)
	}

	select {
	case in := <-received:
		if in.ResponseID != 2 || in.LastUserTranscript() != "hi" {
			t.Fatalf("unexpected inbound frame: %+v", in)
		}
	case <-time.After(time.Second):
		t.Fatalf("server did not receive the frame")
	}
}

func TestConnCloseIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		conn.Close(protocol.CloseCodeUnsupportedData, "bad frame")
		conn.Close(protocol.CloseCodeUnsupportedData, "bad frame")
		if !conn.Closed() {
			t.Errorf("expected Closed() to report true")
		}
		if err := conn.Send(protocol.NewOutbound(1, "x", true)); err != nil {
			t.Errorf("Send on closed conn should no-op, got %v", err)
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
}
