// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestGenerateTOTPSecret verifies secret format and uniqueness.
*/
func TestGenerateTOTPSecret(t *testing.T) {
	first, err := GenerateTOTPSecret()
	require.NoError(t, err)
	second, err := GenerateTOTPSecret()
	require.NoError(t, err)

	// 20 raw bytes encode to 32 Base32 characters without padding.
	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "=")
}

/*
TestVerifyTOTP_CurrentWindow verifies that a code generated for the current
window validates, and that neighbouring windows are tolerated.
*/
func TestVerifyTOTP_CurrentWindow(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	require.NoError(t, err)

	now := time.Now()

	current, err := totpAt(secret, now)
	require.NoError(t, err)
	assert.True(t, verifyTOTPAt(secret, current, now))

	// One step behind and ahead must still pass (clock skew tolerance).
	previous, err := totpAt(secret, now.Add(-totpPeriod*time.Second))
	require.NoError(t, err)
	assert.True(t, verifyTOTPAt(secret, previous, now))

	next, err := totpAt(secret, now.Add(totpPeriod*time.Second))
	require.NoError(t, err)
	assert.True(t, verifyTOTPAt(secret, next, now))

	// Two steps away is outside the tolerance.
	stale, err := totpAt(secret, now.Add(-2*totpPeriod*time.Second))
	require.NoError(t, err)
	if stale != current && stale != previous && stale != next {
		assert.False(t, verifyTOTPAt(secret, stale, now))
	}
}

/*
TestVerifyTOTP_RejectsMalformedCodes verifies input hygiene: short codes,
non-digits, and empty submissions fail before any HMAC computation.
*/
func TestVerifyTOTP_RejectsMalformedCodes(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"too_short", "12345"},
		{"too_long", "1234567"},
		{"letters", "12345a"},
		{"whitespace_only", "      "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyTOTP(secret, tt.code))
		})
	}
}

/*
TestVerifyTOTP_BadSecret verifies that an undecodable secret fails closed.
*/
func TestVerifyTOTP_BadSecret(t *testing.T) {
	assert.False(t, VerifyTOTP("not base32 !!!", "123456"))
}

/*
TestGenerateHOTP_RFC4226Vectors checks the reference vectors from RFC 4226
Appendix D (secret "12345678901234567890").
*/
func TestGenerateHOTP_RFC4226Vectors(t *testing.T) {
	key := []byte("12345678901234567890")

	expected := []int{755224, 287082, 359152, 969429, 338314, 254676, 287922, 162583, 399871, 520489}
	for counter, want := range expected {
		assert.Equal(t, want, generateHOTP(key, int64(counter), totpDigits), "counter %d", counter)
	}
}

/*
TestTOTPEnrollmentURI verifies the Key-Uri format and escaping.
*/
func TestTOTPEnrollmentURI(t *testing.T) {
	uri := TOTPEnrollmentURI("ABC234", "user@lexora.app", "Lexora")

	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/Lexora:user@lexora.app?"))
	assert.Contains(t, uri, "secret=ABC234")
	assert.Contains(t, uri, "issuer=Lexora")
	assert.Contains(t, uri, "digits=6")
	assert.Contains(t, uri, "period=30")
}
