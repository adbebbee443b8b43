// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	service, err := NewTokenService(testSecret, "lexora.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_SecretValidation verifies that weak key material is
rejected at construction.
*/
func TestTokenService_SecretValidation(t *testing.T) {
	_, err := NewTokenService("", "lexora.test")
	assert.Error(t, err)

	_, err = NewTokenService("too-short", "lexora.test")
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, "lexora.test")
	assert.NoError(t, err)
}

/*
TestTokenService_AccessRoundTrip verifies that full and partial access
tokens carry the subject and the correct 2FA flag.
*/
func TestTokenService_AccessRoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	tests := []struct {
		name      string
		validated bool
	}{
		{"full_token", true},
		{"partial_token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.SignAccess("user-123", tt.validated, 15*time.Minute)
			require.NoError(t, err)

			claims, err := service.Verify(token)
			require.NoError(t, err)

			assert.Equal(t, "user-123", claims.Subject)
			require.True(t, claims.IsAccessToken())
			assert.False(t, claims.IsResetToken())
			assert.Equal(t, tt.validated, *claims.TwoFactorValidated)
		})
	}
}

/*
TestTokenService_ResetShape verifies that reset tokens omit the 2FA flag so
they can never pass an access-token shape check.
*/
func TestTokenService_ResetShape(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.SignReset("user-123", 15*time.Minute)
	require.NoError(t, err)

	claims, err := service.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject)
	assert.True(t, claims.IsResetToken())
	assert.False(t, claims.IsAccessToken())
	assert.Nil(t, claims.TwoFactorValidated)
}

/*
TestTokenService_Expired verifies that a token past its TTL fails with
ErrTokenExpired, not a generic error.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.SignAccess("user-123", true, -1*time.Minute)
	require.NoError(t, err)

	claims, err := service.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

/*
TestTokenService_Invalid covers malformed tokens and signature mismatches.
*/
func TestTokenService_Invalid(t *testing.T) {
	service := newTestTokenService(t)

	// Garbage input
	_, err := service.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Signed by a different key
	otherService, err := NewTokenService("ffffffffffffffffffffffffffffffff", "lexora.test")
	require.NoError(t, err)
	foreignToken, err := otherService.SignAccess("user-123", true, time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(foreignToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Tampered payload
	token, err := service.SignAccess("user-123", true, time.Minute)
	require.NoError(t, err)
	_, err = service.Verify(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
