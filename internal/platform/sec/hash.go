// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords using the bcrypt algorithm.
//
// # Review Process
//
// The work factor is validated once at construction so that a misconfigured
// BCRYPT_COST aborts startup instead of silently producing weak digests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher validates the bcrypt work factor and returns a ready hasher.
//
// The cost must be within [bcrypt.MinCost, bcrypt.MaxCost] (4..31). Anything
// outside that range is a configuration error.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("sec: bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash hashes a plain-text password using bcrypt.
//
// bcrypt embeds a fresh random salt per call, so hashing the same plaintext
// twice yields different digests.
func (hasher *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec_hash_password_failed: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare checks a plain-text password against its stored digest.
//
// The comparison is constant-time with respect to digest content. A mismatch
// is reported as false, never as an error; only a malformed digest errors
// inside bcrypt and is also reported as false here.
func (hasher *PasswordHasher) Compare(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
