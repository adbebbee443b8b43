// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

/*
Package auth implements the core identity and access management (IAM) flows.

It orchestrates credential validation, the two-step sign-in (password then
TOTP), two-factor enrollment, and the password reset lifecycle.

Architecture:

  - Service: Orchestrates business logic (SignIn, VerifyTwoFactor, reset flow).
  - Directory: Abstracted interface over the account storage.
  - Security: Bcrypt hashing, HS256 JWTs, and RFC 6238 TOTP via the sec package.

The package ensures that identity decisions are uniform: a caller can never
distinguish a missing account from a wrong password, and a requested reset
always reports success.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/internal/platform/constants"
	"github.com/lexora-app/lexora/internal/platform/ctxutil"
	"github.com/lexora-app/lexora/internal/platform/qrcode"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/internal/users/user"
)

// # Contracts & Types

// UserDirectory defines the account access contract required by the IAM flows.
//
// # Why an interface?
//
// The auth service only needs a narrow slice of the account repository. The
// interface keeps the dependency direction clean and makes the service fully
// testable with an in-memory fake.
type UserDirectory interface {
	FindByEmail(context context.Context, email string) (*user.User, error)
	FindByID(context context.Context, id string) (*user.User, error)
	UpdatePassword(context context.Context, userID, newHash string) error
	UpdateLastLogin(context context.Context, userID string, at time.Time) error
	SetTwoFactor(context context.Context, userID, secret string, enabled bool) error
}

// Notifier defines the outbound notification contract for the reset flow.
type Notifier interface {
	// SendPasswordReset enqueues a password reset email carrying the reset link.
	SendPasswordReset(context context.Context, email, name, resetURL string) error
}

// TTLConfig bundles the lifetimes of the three token shapes.
type TTLConfig struct {
	// Access is the lifetime of a fully validated session token.
	Access time.Duration
	// Partial is the lifetime of a password-only session awaiting TOTP.
	Partial time.Duration
	// Reset is the lifetime of a password reset token.
	Reset time.Duration
}

// Service implements authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential checks,
// token issuance, or the reset flow must be reviewed by the security team.
type Service struct {
	directory UserDirectory
	tokens    *sec.TokenService
	hasher    *sec.PasswordHasher
	notifier  Notifier
	appURL    string
	ttl       TTLConfig
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	directory UserDirectory,
	tokens *sec.TokenService,
	hasher *sec.PasswordHasher,
	notifier Notifier,
	appURL string,
	ttl TTLConfig,
) *Service {
	return &Service{
		directory: directory,
		tokens:    tokens,
		hasher:    hasher,
		notifier:  notifier,
		appURL:    appURL,
		ttl:       ttl,
	}
}

// # Authentication Flow

// Session represents the outcome of a successful sign-in step.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`

	// TwoFactorRequired signals that the issued token is partial and must be
	// upgraded via the TOTP verification endpoint before protected routes open up.
	TwoFactorRequired bool `json:"two_factor_required"`

	User *user.User `json:"user"`
}

/*
ValidateCredentials checks an email/password pair against the directory.

Description: The failure mode is deliberately indistinguishable between a
missing account, a deactivated account, and a wrong password to prevent
account enumeration.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *user.User: The matched account
  - error: apperr.InvalidCredentials on any mismatch
*/
func (service *Service) ValidateCredentials(context context.Context, email, password string) (*user.User, error) {
	account, err := service.directory.FindByEmail(context, user.NormalizeEmail(email))
	if err != nil {
		// Burn a hash comparison anyway so the response time does not reveal
		// whether the account exists.
		service.hasher.Compare(password, "")
		return nil, apperr.InvalidCredentials()
	}

	if !account.IsActive {
		return nil, apperr.InvalidCredentials()
	}

	if !service.hasher.Compare(password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	return account, nil
}

/*
SignIn validates credentials and issues the appropriate session token.

Description: Accounts without two-factor enrollment receive a full access
token immediately. Enrolled accounts receive a short-lived partial token that
only unlocks the TOTP verification endpoint.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready session (full or partial)
  - error: InvalidCredentials or signing failures
*/
func (service *Service) SignIn(context context.Context, email, password string) (*Session, error) {
	account, err := service.ValidateCredentials(context, email, password)
	if err != nil {
		return nil, err
	}

	// Record the sign-in asynchronously. Losing a last-login timestamp must
	// never fail or slow down authentication.
	go service.recordLastLogin(context, account.ID)

	// Enrolled accounts get a partial token until the second factor clears.
	if account.TwoFactorEnabled {
		token, err := service.tokens.SignAccess(account.ID, false, service.ttl.Partial)
		if err != nil {
			return nil, fmt.Errorf("auth_service_partial_token_failed: %w", err)
		}
		return &Session{
			AccessToken:       token,
			TokenType:         "Bearer",
			ExpiresIn:         int64(service.ttl.Partial / time.Second),
			TwoFactorRequired: true,
			User:              account,
		}, nil
	}

	token, err := service.tokens.SignAccess(account.ID, true, service.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(service.ttl.Access / time.Second),
		User:        account,
	}, nil
}

// recordLastLogin persists the sign-in timestamp on a detached context.
func (service *Service) recordLastLogin(parent context.Context, userID string) {
	detached, cancel := stdContextWithTimeout(parent, 5*time.Second)
	defer cancel()

	if err := service.directory.UpdateLastLogin(detached, userID, time.Now()); err != nil {
		ctxutil.GetLogger(parent).Warn("auth_last_login_update_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// stdContextWithTimeout detaches from the request's cancellation while keeping
// its values (request ID, logger) for correlation.
func stdContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

// # Two-Factor Authentication

/*
VerifyTwoFactor upgrades a partial session after a successful TOTP check.

Description: Validates the submitted six-digit code against the account's
enrolled secret (with one time-step of clock drift tolerance) and issues a
fully validated access token.

Parameters:
  - context: context.Context
  - userID: string (subject of the partial token)
  - code: string

Returns:
  - *Session: Full session
  - error: Unauthorized (not enrolled, wrong code, or unresolvable subject)
*/
func (service *Service) VerifyTwoFactor(context context.Context, userID, code string) (*Session, error) {
	validator := &validate.Validator{}
	if err := validator.TOTPCode("code", code).Err(); err != nil {
		return nil, err
	}

	account, err := service.directory.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	// Not enrolled reads as an authorization failure, same as a wrong code,
	// so the endpoint reveals nothing about the account's 2FA posture.
	if !account.TwoFactorEnabled || account.TwoFactorSecret == "" {
		return nil, apperr.Unauthorized("Two-factor authentication is not enabled for this account")
	}

	if !sec.VerifyTOTP(account.TwoFactorSecret, code) {
		return nil, apperr.Unauthorized("Invalid two-factor code")
	}

	token, err := service.tokens.SignAccess(account.ID, true, service.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("auth_service_upgrade_token_failed: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(service.ttl.Access / time.Second),
		User:        account,
	}, nil
}

// Enrollment carries the artifacts a client needs to finish TOTP enrollment.
type Enrollment struct {
	// Secret is the base32 TOTP secret for manual entry.
	Secret string `json:"secret"`
	// OTPAuthURL is the otpauth:// Key-Uri encoded in the QR code.
	OTPAuthURL string `json:"otpauth_url"`
	// QRCode is a data: URL with a PNG rendering of OTPAuthURL.
	QRCode string `json:"qr_code"`
}

/*
GenerateTwoFactorSecret enrolls the account into TOTP two-factor auth.

Description: Generates a fresh secret, persists it FIRST, and only then
renders the QR code. If QR rendering fails the secret is already stored, so
the client can retry enrollment without being locked out.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Enrollment: Secret, Key-Uri, and QR code data URL
  - error: Storage or rendering failures
*/
func (service *Service) GenerateTwoFactorSecret(context context.Context, userID string) (*Enrollment, error) {
	account, err := service.directory.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	secret, err := sec.GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("auth_service_totp_secret_failed: %w", err)
	}

	// Persist before rendering. The stored secret is the source of truth.
	if err := service.directory.SetTwoFactor(context, account.ID, secret, true); err != nil {
		return nil, fmt.Errorf("auth_service_totp_persist_failed: %w", err)
	}

	otpAuthURL := sec.TOTPEnrollmentURI(secret, account.Email, constants.TOTPIssuer)

	qrDataURL, err := qrcode.GenerateDataURL(otpAuthURL, 0)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_totp_qr_failed: %w", err))
	}

	return &Enrollment{
		Secret:     secret,
		OTPAuthURL: otpAuthURL,
		QRCode:     qrDataURL,
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: If the email belongs to an account, a reset token is signed and
a reset link is enqueued for email delivery. The caller always receives the
same success outcome to prevent user enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Internal signing or enqueue failures; unknown emails are silent
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	account, err := service.directory.FindByEmail(context, user.NormalizeEmail(email))
	if err != nil {
		// Unknown email. Report success upstream to keep the response uniform.
		return nil
	}

	if !account.IsActive {
		return nil
	}

	token, err := service.tokens.SignReset(account.ID, service.ttl.Reset)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	resetURL := service.appURL + "/reset-password?token=" + url.QueryEscape(token)

	// Delivery is queued with at-least-once semantics, and that guarantee
	// starts at enqueue: a failed enqueue would lose the job with no retry,
	// so it surfaces as a 500. A 500 reveals nothing about account existence.
	if err := service.notifier.SendPasswordReset(context, account.Email, account.FullName(), resetURL); err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "auth_reset_dispatch_failed",
			slog.String("user_id", account.ID),
			slog.Any("error", err),
		)
		return apperr.Internal(err)
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the reset token's signature, expiry, and SHAPE (an
access token can never reset a password), then stores the new password hash.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Unauthorized (bad token), ValidationError, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required(user.FieldPassword, newPassword).
		MinLen(user.FieldPassword, newPassword, sec.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	claims, err := service.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return apperr.Unauthorized("Reset token has expired")
		}
		return apperr.Unauthorized("Reset token is invalid")
	}

	// Shape check: only reset-shaped tokens may pass. A leaked access token
	// must not be usable to take over the account's password.
	if !claims.IsResetToken() {
		return apperr.Unauthorized("Reset token is invalid")
	}

	// The subject must still resolve to a live account.
	account, err := service.directory.FindByID(context, claims.Subject)
	if err != nil {
		return apperr.Unauthorized("Reset token is invalid")
	}

	hashedPassword, err := service.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.directory.UpdatePassword(context, account.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	return nil
}
