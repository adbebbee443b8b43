// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/lexora/internal/platform/ctxutil"
	"github.com/lexora-app/lexora/internal/platform/middleware"
	"github.com/lexora-app/lexora/internal/platform/sec"
)

// fakeVerifier maps raw token strings to pre-built claims.
type fakeVerifier struct {
	tokens map[string]*sec.TokenClaims
}

func (f *fakeVerifier) Verify(tokenString string) (*sec.TokenClaims, error) {
	claims, ok := f.tokens[tokenString]
	if !ok {
		return nil, sec.ErrTokenInvalid
	}
	return claims, nil
}

// fakeLoader maps user IDs to principals.
type fakeLoader struct {
	principals map[string]*sec.Principal
}

func (f *fakeLoader) LoadPrincipal(_ context.Context, userID string) (*sec.Principal, error) {
	principal, ok := f.principals[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	// Copy so Authenticate's flag mutation does not leak between requests.
	copied := *principal
	return &copied, nil
}

func boolPtr(b bool) *bool { return &b }

func accessClaims(userID string, validated bool) *sec.TokenClaims {
	return &sec.TokenClaims{
		RegisteredClaims:   jwt.RegisteredClaims{Subject: userID},
		TwoFactorValidated: boolPtr(validated),
	}
}

func resetClaims(userID string) *sec.TokenClaims {
	return &sec.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
}

// newGuardFixture wires an Authenticate middleware around a probe handler that
// records the principal it observed.
func newGuardFixture(t *testing.T, inner http.Handler) (http.Handler, *fakeVerifier, *fakeLoader) {
	t.Helper()

	verifier := &fakeVerifier{tokens: map[string]*sec.TokenClaims{
		"full-token":    accessClaims("user-1", true),
		"partial-token": accessClaims("user-1", false),
		"reset-token":   resetClaims("user-1"),
		"ghost-token":   accessClaims("ghost", true),
	}}
	loader := &fakeLoader{principals: map[string]*sec.Principal{
		"user-1": {
			UserID: "user-1",
			Email:  "user@example.com",
			Claims: []sec.Claim{sec.ClaimReadUser},
		},
		"super-1": {
			UserID:      "super-1",
			Email:       "root@example.com",
			IsSuperuser: true,
		},
	}}
	verifier.tokens["super-token"] = accessClaims("super-1", true)

	return middleware.Authenticate(verifier, loader)(inner), verifier, loader
}

/*
TestAuthenticate_Anonymous verifies that requests without an Authorization
header pass through with no principal attached.
*/
func TestAuthenticate_Anonymous(t *testing.T) {
	var seen *sec.Principal
	handler, _, _ := newGuardFixture(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)
}

/*
TestAuthenticate_Rejections tests each way a bearer credential can fail.
*/
func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"malformed_header", "NotBearer full-token"},
		{"unknown_token", "Bearer garbage"},
		{"reset_token_as_credential", "Bearer reset-token"},
		{"deleted_user", "Bearer ghost-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newGuardFixture(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				t.Fatal("handler should not be reached")
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Authorization", tt.header)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

/*
TestAuthenticate_FullToken verifies that a valid access token resolves into a
principal carrying the token's session flag.
*/
func TestAuthenticate_FullToken(t *testing.T) {
	var seen *sec.Principal
	handler, _, _ := newGuardFixture(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer full-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
	assert.True(t, seen.TwoFactorValidated)
}

/*
TestRequireAuth verifies that anonymous requests are rejected while both full
and partial sessions are let through.
*/
func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"partial_session", "Bearer partial-token", http.StatusOK},
		{"full_session", "Bearer full-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := middleware.RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(http.StatusOK)
			}))
			handler, _, _ := newGuardFixture(t, inner)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireTwoFactor verifies that partial sessions are blocked until the
second factor has been verified.
*/
func TestRequireTwoFactor(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"partial_session", "Bearer partial-token", http.StatusUnauthorized},
		{"full_session", "Bearer full-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := middleware.RequireTwoFactor(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(http.StatusOK)
			}))
			handler, _, _ := newGuardFixture(t, inner)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireClaims covers the authorization matrix: OR-semantics over the
required claims, the superuser bypass, and the uniform 401 on denial.
*/
func TestRequireClaims(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		required   []sec.Claim
		wantStatus int
	}{
		{"anonymous", "", []sec.Claim{sec.ClaimReadUser}, http.StatusUnauthorized},
		{"partial_session", "Bearer partial-token", []sec.Claim{sec.ClaimReadUser}, http.StatusUnauthorized},
		{"holds_required_claim", "Bearer full-token", []sec.Claim{sec.ClaimReadUser}, http.StatusOK},
		{"holds_one_of_many", "Bearer full-token", []sec.Claim{sec.ClaimDeleteUser, sec.ClaimReadUser}, http.StatusOK},
		{"missing_claim", "Bearer full-token", []sec.Claim{sec.ClaimDeleteUser}, http.StatusUnauthorized},
		{"superuser_bypass", "Bearer super-token", []sec.Claim{sec.ClaimDeleteUser}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := middleware.RequireClaims(tt.required...)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(http.StatusOK)
			}))
			handler, _, _ := newGuardFixture(t, inner)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
