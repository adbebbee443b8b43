// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package user

import (
	"context"
	"time"

	"github.com/lexora-app/lexora/pkg/pagination"
)

// # User Data Access

// Repository defines the data access contract for user accounts.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Soft-deleted accounts are excluded.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Soft-deleted accounts are excluded.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (including duplicate email)
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to mutable profile and access-control fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateLastLogin records a successful sign-in timestamp.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastLogin(context context.Context, userID string, at time.Time) error

	/*
		SetTwoFactor stores the TOTP secret and enrollment flag for the user.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - secret: string
		  - enabled: bool

		Returns:
		  - error: Persistence failures
	*/
	SetTwoFactor(context context.Context, userID, secret string, enabled bool) error

	/*
		SoftDelete marks the account as deleted without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		List returns a page of accounts ordered by creation time.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*User: Page of accounts
		  - int: Total count for pagination metadata
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*User, int, error)
}
