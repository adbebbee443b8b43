// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// Guard chain: authentication and authorization middleware.
//
// # Architecture
//
// [Authenticate] is mounted globally and resolves the caller's identity
// without rejecting anonymous traffic. The Require* middlewares are mounted
// per route group and enforce progressively stricter policies:
//
//	Authenticate -> RequireAuth -> RequireTwoFactor -> RequireClaims
//
// Every rejection in the chain is a uniform HTTP 401 so that callers cannot
// distinguish a missing token from an insufficient one.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/internal/platform/ctxutil"
	"github.com/lexora-app/lexora/internal/platform/respond"
	"github.com/lexora-app/lexora/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify bearer tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token
// service implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.TokenClaims, error)
}

// PrincipalLoader resolves a verified token subject into a live [sec.Principal].
//
// Implementations must return an error for subjects that no longer exist,
// are deactivated, or are soft-deleted. Loading on every request means a
// disabled account is locked out immediately, not at token expiry.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*sec.Principal, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Reject tokens that are not access-shaped (reset tokens never authenticate).
//  5. Resolve the subject via [PrincipalLoader] and inject the [*sec.Principal]
//     into the request context for downstream use.
func Authenticate(verifier TokenVerifier, loader PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenString := parts[1]
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// Reset tokens carry no session flag and are only honored by the
			// password-reset endpoint, never as an Authorization credential.
			if !claims.IsAccessToken() {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Principal Resolution ───────────────────────────────────────
			principal, err := loader.LoadPrincipal(request.Context(), claims.Subject)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}
			principal.TwoFactorValidated = *claims.TwoFactorValidated

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. Partial sessions
// (password verified, second factor pending) are accepted here; use
// [RequireTwoFactor] for routes that need a fully validated session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireTwoFactor blocks partial sessions.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so the two do not need to be mounted together.
//
// # Flow
//  1. Check if [*sec.Principal] exists in context (implies AuthN).
//  2. Check the session's two-factor flag carried by the access token.
//  3. If the session is partial, abort with HTTP 401 Unauthorized.
func RequireTwoFactor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())

		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !principal.TwoFactorValidated {
			respond.Error(writer, request, apperr.Unauthorized("Two-factor verification required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireClaims blocks requests whose principal holds none of the required claims.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies both
// [RequireAuth] and [RequireTwoFactor].
//
// # Flow
//  1. Check if a fully validated [*sec.Principal] exists in context.
//  2. Superusers pass unconditionally.
//  3. Otherwise the principal must hold at least ONE of the required claims.
//  4. Any failure aborts with HTTP 401 Unauthorized, never 403, so that
//     probing cannot distinguish "no session" from "no permission".
func RequireClaims(required ...sec.Claim) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.TwoFactorValidated {
				respond.Error(writer, request, apperr.Unauthorized("Two-factor verification required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !principal.HasAnyClaim(required...) {
				respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
