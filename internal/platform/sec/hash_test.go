// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

/*
TestPasswordHasher_CostValidation verifies that out-of-range work factors
are rejected at construction time.
*/
func TestPasswordHasher_CostValidation(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"min_cost", bcrypt.MinCost, false},
		{"typical_cost", 10, false},
		{"max_cost", bcrypt.MaxCost, false},
		{"below_min", bcrypt.MinCost - 1, true},
		{"above_max", bcrypt.MaxCost + 1, true},
		{"zero", 0, true},
		{"negative", -4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher, err := NewPasswordHasher(tt.cost)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, hasher)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, hasher)
			}
		})
	}
}

/*
TestPasswordHasher_RoundTrip verifies hash+compare round trips for valid
passwords, and that any other plaintext fails the comparison.
*/
func TestPasswordHasher_RoundTrip(t *testing.T) {
	// MinCost keeps the test fast; the algorithm is identical.
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	passwords := []string{
		"Sup3rSecret!",
		"a longer pass phrase with spaces",
		"pässwörd-ünïcode",
	}

	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		require.NoError(t, err)
		require.NotEqual(t, password, digest)

		assert.True(t, hasher.Compare(password, digest))
		assert.False(t, hasher.Compare(password+"x", digest))
		assert.False(t, hasher.Compare("", digest))
	}
}

/*
TestPasswordHasher_RandomSalt verifies that hashing the same plaintext twice
yields different digests (per-call random salt).
*/
func TestPasswordHasher_RandomSalt(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Compare("same-password", first))
	assert.True(t, hasher.Compare("same-password", second))
}

/*
TestPasswordHasher_MalformedDigest verifies that a garbage digest never
matches and never panics.
*/
func TestPasswordHasher_MalformedDigest(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, hasher.Compare("whatever", "not-a-bcrypt-digest"))
	assert.False(t, hasher.Compare("whatever", ""))
}
