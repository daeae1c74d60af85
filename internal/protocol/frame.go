// Package protocol defines the inbound/outbound JSON frame shapes carried
// over the session transport, and the classifier that distinguishes the
// three inbound interaction kinds.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InteractionType discriminates an inbound frame.
type InteractionType string

const (
	InteractionUpdateOnly       InteractionType = "update_only"
	InteractionResponseRequired InteractionType = "response_required"
)

// TranscriptEntry is one element of a response_required frame's transcript.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Inbound is a frame received from the voice transport. Only the fields
// relevant to its InteractionType are populated.
type Inbound struct {
	InteractionType InteractionType   `json:"interaction_type"`
	ResponseID      int               `json:"response_id"`
	Transcript      []TranscriptEntry `json:"transcript"`
	Turntaking      string            `json:"turntaking"`
}

// IsBargeIn reports whether an update_only frame's turntaking field carries
// the exact value that signals a genuine user-initiated interruption.
func (in Inbound) IsBargeIn() bool {
	return in.InteractionType == InteractionUpdateOnly && in.Turntaking == "user_turn"
}

// LastUserTranscript returns the trimmed content of the last user-role
// transcript entry, or "" if none is present.
func (in Inbound) LastUserTranscript() string {
	for i := len(in.Transcript) - 1; i >= 0; i-- {
		if in.Transcript[i].Role == "user" {
			return strings.TrimSpace(in.Transcript[i].Content)
		}
	}
	return ""
}

// DecodeInbound parses a raw frame payload. A JSON decode failure should be
// treated by the caller as a protocol error (close with the "unsupported
// data" close code).
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("protocol: decode inbound frame: %w", err)
	}
	return in, nil
}

// Outbound is a frame written to the voice transport.
type Outbound struct {
	ResponseType    string `json:"response_type"`
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call"`
}

// NewOutbound builds a partial or final outbound frame for responseID.
func NewOutbound(responseID int, content string, complete bool) Outbound {
	return Outbound{
		ResponseType:    "response",
		ResponseID:      responseID,
		Content:         content,
		ContentComplete: complete,
	}
}

// Encode marshals the frame to JSON.
func (o Outbound) Encode() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode outbound frame: %w", err)
	}
	return data, nil
}

// Close codes used when the session transport upgrade must be rejected or
// the connection torn down for a protocol violation.
const (
	CloseCodePolicyViolation = 1008
	CloseCodeUnsupportedData = 1003
)
