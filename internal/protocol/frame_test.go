package protocol

import "testing"

func TestDecodeInboundResponseRequired(t *testing.T) {
	raw := []byte(`{"interaction_type":"response_required","response_id":1,"transcript":[{"role":"user","content":"What are your hours?"}]}`)
	in, err := DecodeInbound(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.InteractionType != InteractionResponseRequired {
		t.Fatalf("wrong interaction type: %v", in.InteractionType)
	}
	if got := in.LastUserTranscript(); got != "What are your hours?" {
		t.Fatalf("wrong transcript: %q", got)
	}
}

func TestDecodeInboundMalformed(t *testing.T) {
	if _, err := DecodeInbound([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestIsBargeInRequiresExactTurntaking(t *testing.T) {
	cases := []struct {
		in   Inbound
		want bool
	}{
		{Inbound{InteractionType: InteractionUpdateOnly, Turntaking: "user_turn"}, true},
		{Inbound{InteractionType: InteractionUpdateOnly, Turntaking: "agent_turn"}, false},
		{Inbound{InteractionType: InteractionUpdateOnly, Turntaking: ""}, false},
		{Inbound{InteractionType: InteractionResponseRequired, Turntaking: "user_turn"}, false},
	}
	for _, c := range cases {
		if got := c.in.IsBargeIn(); got != c.want {
			t.Fatalf("IsBargeIn(%+v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestOutboundEncode(t *testing.T) {
	o := NewOutbound(5, "hello", false)
	data, err := o.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty encoded frame")
	}
}
