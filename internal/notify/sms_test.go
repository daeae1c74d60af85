package notify

import "testing"

func TestShortIDTruncates(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("got %q", got)
	}
}

func TestShortIDPassesThroughShortStrings(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
