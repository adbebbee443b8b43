// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// # TOTP (RFC 6238) Parameters

const (
	// totpDigits is the required code length. Shorter submissions are
	// rejected before any HMAC work happens.
	totpDigits = 6

	// totpPeriod is the validity window in seconds (RFC 6238 standard).
	totpPeriod = 30

	// totpSecretBytes is the raw secret size. 160 bits per the RFC 4226
	// recommendation for HMAC-SHA1.
	totpSecretBytes = 20
)

var (
	// base32NoPadding is the encoding used by every authenticator app.
	base32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

	// totpCodeRegex matches exactly six decimal digits.
	totpCodeRegex = regexp.MustCompile(`^\d{6}$`)
)

// GenerateTOTPSecret creates a new Base32-encoded shared secret from a
// cryptographically secure random source.
//
// The secret is generated once per enrollment and must never be exposed
// after the initial enrollment response.
func GenerateTOTPSecret() (string, error) {
	secret := make([]byte, totpSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("sec_generate_totp_secret_failed: %w", err)
	}
	return base32NoPadding.EncodeToString(secret), nil
}

// TOTPEnrollmentURI builds the otpauth:// Key-Uri for authenticator-app
// import (scannable as a QR code).
//
// Format reference:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func TOTPEnrollmentURI(secret, accountName, issuer string) string {
	label := fmt.Sprintf("%s:%s", url.PathEscape(issuer), url.PathEscape(accountName))

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", totpDigits))
	query.Set("period", fmt.Sprintf("%d", totpPeriod))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode())
}

// VerifyTOTP validates a submitted one-time code against the shared secret.
//
// # Clock Skew
//
// Codes from the previous, current, and next 30-second windows are accepted
// to tolerate drift between the server and the user's device. Anything that
// is not exactly six digits fails immediately.
func VerifyTOTP(secret, submittedCode string) bool {
	return verifyTOTPAt(secret, submittedCode, time.Now())
}

// verifyTOTPAt is the clock-injectable core of [VerifyTOTP].
func verifyTOTPAt(secret, submittedCode string, at time.Time) bool {
	submittedCode = strings.TrimSpace(submittedCode)
	if !totpCodeRegex.MatchString(submittedCode) {
		return false
	}

	key, err := base32NoPadding.DecodeString(strings.TrimSpace(strings.ToUpper(secret)))
	if err != nil {
		return false
	}

	counter := at.Unix() / totpPeriod
	for i := int64(-1); i <= 1; i++ {
		code := generateHOTP(key, counter+i, totpDigits)
		if fmt.Sprintf("%06d", code) == submittedCode {
			return true
		}
	}

	return false
}

// totpAt computes the code for the window containing t. Used by enrollment
// previews and tests.
func totpAt(secret string, t time.Time) (string, error) {
	key, err := base32NoPadding.DecodeString(strings.TrimSpace(strings.ToUpper(secret)))
	if err != nil {
		return "", fmt.Errorf("sec_totp_decode_secret_failed: %w", err)
	}
	return fmt.Sprintf("%06d", generateHOTP(key, t.Unix()/totpPeriod, totpDigits)), nil
}

// generateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
func generateHOTP(key []byte, counter int64, digits int) int {
	// Counter is encoded as a big-endian 8-byte array (RFC 4226 requirement).
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	hmacHash := hmac.New(sha1.New, key)
	hmacHash.Write(counterBytes)
	hash := hmacHash.Sum(nil)

	// Dynamic truncation (RFC 4226): the last 4 bits pick the offset, the
	// MSB is cleared to keep the value positive.
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}
