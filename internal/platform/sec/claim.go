// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

// # Permission Claims

// Claim is an atomic permission string associated with a user account.
//
// Claims drive coarse-grained authorization: a route declares the claims it
// accepts and the guard chain allows the request if the authenticated user
// holds ANY of them (or is a superuser).
type Claim string

const (
	// ClaimCreateUser allows provisioning new accounts.
	ClaimCreateUser Claim = "create_user"

	// ClaimReadUser allows listing and reading other accounts.
	ClaimReadUser Claim = "read_user"

	// ClaimUpdateUser allows editing other accounts.
	ClaimUpdateUser Claim = "update_user"

	// ClaimDeleteUser allows soft-deleting other accounts.
	ClaimDeleteUser Claim = "delete_user"

	// ClaimManageScenarios allows publishing and curating scenario content.
	ClaimManageScenarios Claim = "manage_scenarios"
)

// knownClaims is the closed set of recognized claim values.
var knownClaims = map[Claim]struct{}{
	ClaimCreateUser:      {},
	ClaimReadUser:        {},
	ClaimUpdateUser:      {},
	ClaimDeleteUser:      {},
	ClaimManageScenarios: {},
}

// IsValid reports whether the claim is a recognized value.
func (c Claim) IsValid() bool {
	_, ok := knownClaims[c]
	return ok
}

// # Authenticated Identity

// Principal is the per-request identity assembled by the guard chain.
//
// It is built from a verified bearer token plus a fresh credential-store
// lookup, so claim changes and account deactivation take effect immediately
// instead of waiting for token expiry.
type Principal struct {
	UserID      string
	Email       string
	Claims      []Claim
	IsSuperuser bool

	// TwoFactorValidated carries the token's 2FA flag. False means the
	// request holds a partial token and may only reach routes that
	// explicitly accept one.
	TwoFactorValidated bool
}

// HasAnyClaim reports whether the principal holds at least one of the
// required claims. Superusers match unconditionally.
func (p *Principal) HasAnyClaim(required ...Claim) bool {
	if p.IsSuperuser {
		return true
	}
	for _, want := range required {
		for _, have := range p.Claims {
			if have == want {
				return true
			}
		}
	}
	return false
}
