package oauthbootstrap

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestExchangeCodeAgainstLiveWorkOS is an integration check, skipped unless
// explicit test credentials are supplied — a real authorization code can
// only be minted by WorkOS's hosted login flow, so there is nothing to
// exercise meaningfully without it.
func TestExchangeCodeAgainstLiveWorkOS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping workos integration test in short mode")
	}
	apiKey := os.Getenv("VOXLINE_TEST_WORKOS_KEY")
	clientID := os.Getenv("VOXLINE_TEST_WORKOS_CLIENT_ID")
	code := os.Getenv("VOXLINE_TEST_WORKOS_CODE")
	if apiKey == "" || clientID == "" || code == "" {
		t.Skip("VOXLINE_TEST_WORKOS_KEY/CLIENT_ID/CODE not set")
	}

	e := NewExchanger(apiKey, clientID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ref, err := e.ExchangeCode(ctx, code)
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if ref.ProfileID == "" {
		t.Fatalf("expected a non-empty profile id")
	}
}
