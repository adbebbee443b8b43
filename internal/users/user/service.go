// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/internal/platform/ctxutil"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/pkg/pagination"
	"github.com/lexora-app/lexora/pkg/pointer"
	"github.com/lexora-app/lexora/pkg/uuid"
)

// # Contracts & Types

// Notifier defines the outbound notification contract used by this service.
//
// # Why an interface?
//
// The service only cares that a welcome message eventually reaches the new
// member. Queueing, retries, and delivery live in the notify package.
type Notifier interface {
	// SendWelcome enqueues a welcome email for a freshly created account.
	SendWelcome(context context.Context, email, name string) error
}

// Service implements account management use cases.
//
// # Review Process
//
// This service controls claim assignment and superuser provisioning. Any
// changes to these paths must be reviewed by the security team.
type Service struct {
	repository Repository
	hasher     *sec.PasswordHasher
	notifier   Notifier
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, hasher *sec.PasswordHasher, notifier Notifier) *Service {
	return &Service{
		repository: repository,
		hasher:     hasher,
		notifier:   notifier,
	}
}

// # Provisioning Flow

// CreateInput holds the data required to provision a new account.
type CreateInput struct {
	Email       string
	Password    string // Optional. A strong password is generated when empty.
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
	Claims      []string
}

// CreateResult carries the created entity plus the generated password, if any.
//
// The generated password is returned exactly once so the operator can relay
// it out of band. It is never persisted or logged in plain text.
type CreateResult struct {
	User              *User  `json:"user"`
	GeneratedPassword string `json:"generated_password,omitempty"`
}

/*
Create validates, hashes, and persists a brand new user account.

Description: Provisions a new member with the requested claims. When no
password is supplied, a strong random one is generated. A welcome email is
enqueued after the account is committed.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *CreateResult: Created entity and one-time generated password
  - error: BadRequest (duplicate email, unknown claim) or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*CreateResult, error) {

	// Canonicalize before validation so the stored address and the unique
	// index always see the normalized form.
	input.Email = NormalizeEmail(input.Email)

	// Validate shape before touching storage.
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldFirstName, input.FirstName)
	if input.Password != "" {
		validator.MinLen(FieldPassword, input.Password, sec.MinPasswordLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Only recognized claims may be assigned. Unknown names are a client error,
	// not a silent drop.
	claims, err := parseClaims(input.Claims)
	if err != nil {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe error. A concurrent
	// create can slip past this check; the unique index on users.account
	// still rejects the insert via the 23505 mapping in dberr.
	if _, err := service.repository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.BadRequest("Email is already registered")
	}

	// Generate a password when the operator did not supply one.
	password := input.Password
	generated := ""
	if password == "" {
		password, err = sec.GenerateStrongPassword()
		if err != nil {
			return nil, fmt.Errorf("user_service_generate_password_failed: %w", err)
		}
		generated = password
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("user_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	account := &User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		IsStaff:      input.IsStaff,
		IsSuperuser:  input.IsSuperuser,
		Claims:       claims,
	}

	// Persist the user to the database.
	if err := service.repository.Create(context, account); err != nil {
		return nil, fmt.Errorf("user_service_create_failed: %w", err)
	}

	// Enqueue the welcome email only after the row is committed. Delivery is
	// best-effort and must never fail the provisioning request.
	if err := service.notifier.SendWelcome(context, account.Email, account.FullName()); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "user_welcome_dispatch_failed",
			slog.String("user_id", account.ID),
			slog.Any("error", err),
		)
	}

	return &CreateResult{User: account, GeneratedPassword: generated}, nil
}

// # Retrieval

/*
Get returns a single account by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Get(context context.Context, id string) (*User, error) {
	validator := &validate.Validator{}
	if err := validator.UUID(FieldUserID, id).Err(); err != nil {
		return nil, err
	}
	return service.repository.FindByID(context, id)
}

/*
List returns a page of accounts with pagination metadata inputs.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Page of accounts
  - int: Total account count
  - error: Storage errors
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	return service.repository.List(context, params)
}

// # Mutation

// UpdateInput holds the mutable account fields. Nil pointers are left unchanged.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
	Claims      *[]string
}

/*
Update applies partial changes to an existing account.

Description: Only non-nil fields are written. Claim updates are validated
against the recognized claim set before persisting.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *User: Updated entity
  - error: NotFound, BadRequest, or storage errors
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*User, error) {
	account, err := service.Get(context, id)
	if err != nil {
		return nil, err
	}

	account.FirstName = pointer.Fallback(input.FirstName, account.FirstName)
	account.LastName = pointer.Fallback(input.LastName, account.LastName)
	account.IsActive = pointer.Fallback(input.IsActive, account.IsActive)
	account.IsStaff = pointer.Fallback(input.IsStaff, account.IsStaff)
	account.IsSuperuser = pointer.Fallback(input.IsSuperuser, account.IsSuperuser)

	if input.Claims != nil {
		claims, err := parseClaims(*input.Claims)
		if err != nil {
			return nil, err
		}
		account.Claims = claims
	}

	if err := service.repository.Update(context, account); err != nil {
		return nil, fmt.Errorf("user_service_update_failed: %w", err)
	}

	return account, nil
}

/*
Delete soft-deletes an account. The row is retained for audit purposes and
the account immediately stops authenticating.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NotFound or storage errors
*/
func (service *Service) Delete(context context.Context, id string) error {
	// Resolve first so deleting a missing account reports 404 instead of silently succeeding.
	if _, err := service.Get(context, id); err != nil {
		return err
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return fmt.Errorf("user_service_delete_failed: %w", err)
	}

	return nil
}

// # Access Control

/*
LoadPrincipal resolves a verified token subject into a live access-control
identity. It backs the authentication middleware.

Description: Looks the account up on every request so deactivated and
soft-deleted accounts are locked out immediately, not at token expiry.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.Principal: Access-control identity
  - error: apperr.Unauthorized for unusable accounts
*/
func (service *Service) LoadPrincipal(context context.Context, userID string) (*sec.Principal, error) {
	account, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	if !account.IsActive {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return account.Principal(), nil
}

// parseClaims converts and validates claim names from transport input.
func parseClaims(names []string) ([]sec.Claim, error) {
	claims := make([]sec.Claim, 0, len(names))
	for _, name := range names {
		claim := sec.Claim(name)
		if !claim.IsValid() {
			return nil, apperr.BadRequest(fmt.Sprintf("Unknown claim: %s", name))
		}
		claims = append(claims, claim)
	}
	return claims, nil
}
