// Package oauthbootstrap implements the OAuth code exchange named at its
// interface in spec.md §1 ("OAuth code exchange"): a thin wrapper over
// WorkOS SSO that a GET /oauth/callback REST endpoint calls once, turning
// an authorization code into the profile reference that provisions a new
// tenant's dashboard account. Non-core — it never runs inside a live call.
package oauthbootstrap

import (
	"context"
	"fmt"

	"github.com/workos/workos-go/v6/pkg/sso"
)

// ProfileRef identifies the external identity WorkOS resolved the code to.
type ProfileRef struct {
	ProfileID string
	Email     string
}

// Exchanger exchanges an OAuth authorization code for a profile.
type Exchanger struct {
	clientID string
}

// NewExchanger configures the package-level WorkOS SSO client with apiKey
// and binds clientID for subsequent exchanges.
func NewExchanger(apiKey, clientID string) *Exchanger {
	sso.Configure(apiKey, clientID)
	return &Exchanger{clientID: clientID}
}

// ExchangeCode turns an authorization code into a ProfileRef.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) (ProfileRef, error) {
	pt, err := sso.GetProfileAndToken(ctx, sso.GetProfileAndTokenOpts{
		Code: code,
	})
	if err != nil {
		return ProfileRef{}, fmt.Errorf("oauthbootstrap: exchange code: %w", err)
	}
	return ProfileRef{ProfileID: pt.Profile.ID, Email: pt.Profile.Email}, nil
}
