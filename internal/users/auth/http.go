// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

/*
HTTP delivery layer for the authentication lifecycle.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Issues bearer tokens; the guard chain enforces them downstream.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/lexora/internal/platform/middleware"
	requestutil "github.com/lexora-app/lexora/internal/platform/request"
	"github.com/lexora-app/lexora/internal/platform/respond"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/internal/users/user"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the session entry points: sign-in, the two-factor
// step-up, enrollment, and password recovery callbacks.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login                  : Authenticates and returns a JWT (public).
//   - POST /request-password-reset : Starts the recovery flow (public).
//   - POST /reset-password         : Completes the recovery flow (public).
//   - POST /2fa/verify             : Upgrades a partial session (partial token accepted).
//   - POST /2fa/generate           : Enrolls into TOTP (full session required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/request-password-reset", handler.requestPasswordReset)
	router.Post("/reset-password", handler.resetPassword)

	// The verification step is the only protected route a partial session may reach.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/2fa/verify", handler.verifyTwoFactor)
	})

	// Enrollment changes the account's security posture and demands a full session.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireTwoFactor)
		r.Post("/2fa/generate", handler.generateTwoFactor)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyTwoFactorRequest struct {
	Code string `json:"code"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials and issues either a full access token or,
for two-factor enrolled accounts, a short-lived partial token.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token, expiry, and user profile
  - 401: ErrInvalidCredentials: Unknown email, wrong password, or inactive account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(user.FieldEmail, input.Email).
		Required(user.FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SignIn(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
VerifyTwoFactor upgrades a partial session into a full one.

POST /api/v1/auth/2fa/verify

Description: Accepts the six-digit TOTP code for the authenticated subject
and, when valid, issues a fully validated access token.

Request:
  - Body: verifyTwoFactorRequest (Code)

Response:
  - 200: Session: Full access token
  - 400: ErrValidation: Malformed code
  - 401: ErrUnauthorized: Wrong code, not enrolled, or missing session
*/
func (handler *Handler) verifyTwoFactor(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input verifyTwoFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.authService.VerifyTwoFactor(request.Context(), principal.UserID, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
GenerateTwoFactor enrolls the authenticated account into TOTP.

POST /api/v1/auth/2fa/generate

Description: Generates and persists a fresh TOTP secret, then returns the
secret together with an otpauth:// URI and a QR code data URL.

Response:
  - 200: Enrollment: Secret, Key-Uri, and QR code
  - 401: ErrUnauthorized: Partial or missing session
  - 500: ErrInternal: QR rendering failure
*/
func (handler *Handler) generateTwoFactor(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enrollment, err := handler.authService.GenerateTwoFactorSecret(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, enrollment)
}

/*
RequestPasswordReset initiates the password recovery flow.

POST /api/v1/auth/request-password-reset

Description: Enqueues a reset email if the account exists. The response is
identical whether or not the email is registered.

Request:
  - Body: requestResetRequest (Email)

Response:
  - 200: Success: Generic security message
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input requestResetRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(user.FieldEmail, input.Email).Email(user.FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		user.FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the reset token and updates the user's password.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: ErrValidation: Weak password
  - 401: ErrUnauthorized: Invalid, expired, or wrongly shaped token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("token", input.Token)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		user.FieldMessage: "Password updated successfully",
	})
}
