// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, TOTP)
// from the domain logic. It acts as an Infrastructure service injected into
// the Application layer via small interfaces ([TokenVerifier] et al.).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Errors

var (
	// ErrTokenExpired is returned when the token signature is valid but the
	// 'exp' claim is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for every other verification failure:
	// bad signature, wrong algorithm, malformed payload.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// TokenClaims represents the payload embedded inside a Lexora JWT.
//
// # Payload Shapes
//
// Access tokens (full and partial) always carry the TwoFactorValidated flag.
// Password-reset tokens carry the subject only — the flag is absent. Both
// shapes are verified by the same symmetric key; callers discriminate by
// inspecting [TokenClaims.TwoFactorValidated] after verification.
type TokenClaims struct {
	jwt.RegisteredClaims

	// TwoFactorValidated is nil on reset tokens, and set on access tokens:
	// true for a full token, false for a partial one.
	TwoFactorValidated *bool `json:"is2fa_validated,omitempty"`
}

// IsAccessToken reports whether the payload has the access-token shape.
func (c *TokenClaims) IsAccessToken() bool { return c.TwoFactorValidated != nil }

// IsResetToken reports whether the payload has the password-reset shape.
func (c *TokenClaims) IsResetToken() bool { return c.TwoFactorValidated == nil }

// minSecretLength guards against trivially brute-forceable HS256 keys.
const minSecretLength = 32

// TokenService signs and verifies JWTs using a process-wide HS256 secret.
//
// The secret is immutable after construction, making the service safe for
// concurrent use without additional locking.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService validates the signing secret and returns a ready service.
//
// An absent or short secret is a configuration error: the process must not
// start with weak key material.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: JWT secret must be at least %d bytes", minSecretLength)
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// SignAccess creates an access token for a user.
//
// # Parameters
//   - userID: The subject of the token.
//   - twoFactorValidated: true for a full token, false for a partial one.
//   - timeToLive: The duration before the token expires.
func (service *TokenService) SignAccess(userID string, twoFactorValidated bool, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		TwoFactorValidated: &twoFactorValidated,
	}
	return service.sign(claims)
}

// SignReset creates a single-purpose password-reset token carrying only
// the subject.
func (service *TokenService) SignReset(userID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
	}
	return service.sign(claims)
}

// sign serializes and signs the claims with HS256.
func (service *TokenService) sign(claims TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec_sign_token_failed: %w", err)
	}
	return signedToken, nil
}

// Verify checks the signature and validity of a JWT string.
//
// # Returns
//   - *TokenClaims: The decoded payload.
//   - error: [ErrTokenExpired] past expiry, [ErrTokenInvalid] otherwise.
func (service *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Pin the algorithm. Accepting whatever the header announces would
		// allow alg-substitution attacks.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
