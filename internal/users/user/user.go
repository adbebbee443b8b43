// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

/*
Package user implements the account management layer of the Lexora platform.

It defines the core User entity together with the business rules for account
provisioning, claim assignment, and lifecycle (activation, soft deletion).

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
transport dependencies and encapsulates all business rules related to accounts.
*/
package user

import (
	"strings"
	"time"

	"github.com/lexora-app/lexora/internal/platform/sec"
)

// NormalizeEmail canonicalizes an address for storage and lookup. Matching is
// case-insensitive everywhere, so the provisioning path and every email
// lookup must pass addresses through here first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Domain Entities

// User represents a registered member of the Lexora platform.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`

	// Account state flags.
	IsActive    bool `json:"is_active"`
	IsStaff     bool `json:"is_staff"`
	IsSuperuser bool `json:"is_superuser"`

	// Claims grant access to claim-gated operations. Superusers bypass
	// claim checks entirely.
	Claims []sec.Claim `json:"claims"`

	// Two-factor enrollment state. The TOTP secret never leaves the server.
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	TwoFactorSecret  string `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// FullName returns the user's display name for email templates.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Principal projects the account into the access-control identity consumed
// by the guard chain. The two-factor flag is session state and is filled in
// by the authentication middleware, not here.
func (u *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:      u.ID,
		Email:       u.Email,
		Claims:      u.Claims,
		IsSuperuser: u.IsSuperuser,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the account domain.
const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldClaims    = "claims"
	FieldUserID    = "user_id"
	FieldMessage   = "message"
)
