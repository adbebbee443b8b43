// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// PostgreSQL implementation of the account storage layer.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/internal/platform/dberr"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/pkg/pagination"
	"github.com/lexora-app/lexora/pkg/slice"
)

// userColumns is the canonical column list shared by all SELECT queries.
const userColumns = `
	id, email, passwordhash, firstname, lastname,
	isactive, isstaff, issuperuser, claims,
	twofactorenabled, twofactorsecret, lastlogin,
	createdat, updatedat`

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanUser hydrates a User from a pgx row, converting the claims array.
func scanUser(row pgx.Row) (*User, error) {
	account := &User{}
	var claims []string

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.IsActive,
		&account.IsStaff,
		&account.IsSuperuser,
		&claims,
		&account.TwoFactorEnabled,
		&account.TwoFactorSecret,
		&account.LastLogin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Claims = slice.Map(claims, func(claim string) sec.Claim {
		return sec.Claim(claim)
	})

	return account, nil
}

// claimsToStrings converts the typed claim slice for the TEXT[] column.
func claimsToStrings(claims []sec.Claim) []string {
	return slice.Map(claims, func(claim sec.Claim) string {
		return string(claim)
	})
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - account: *User (Entity to persist)

Returns:
  - error: apperr.BadRequest on duplicate email, or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, account *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, firstname, lastname,
			isactive, isstaff, issuperuser, claims,
			twofactorenabled, twofactorsecret, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
		claimsToStrings(account.Claims),
		account.TwoFactorEnabled,
		account.TwoFactorSecret,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "create")
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	account, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return account, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	account, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
Update persists changes to a user's mutable profile and access-control fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - account: *User

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, account *User) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, isactive = $4, isstaff = $5,
		    issuperuser = $6, claims = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.FirstName,
		account.LastName,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
		claimsToStrings(account.Claims),
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
UpdateLastLogin records the timestamp of a successful sign-in.

Parameters:
  - context: context.Context
  - userID: string
  - at: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) UpdateLastLogin(context context.Context, userID string, at time.Time) error {
	const query = "UPDATE users.account SET lastlogin = $2 WHERE id = $1 AND deletedat IS NULL"

	_, err := repository.pool.Exec(context, query, userID, at)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_last_login_failed: %w", err)
	}

	return nil
}

/*
SetTwoFactor stores the TOTP secret and enrollment flag for the user.

Parameters:
  - context: context.Context
  - userID: string
  - secret: string
  - enabled: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) SetTwoFactor(context context.Context, userID, secret string, enabled bool) error {
	const query = `
		UPDATE users.account
		SET twofactorsecret = $2, twofactorenabled = $3, updatedat = $4
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, secret, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_two_factor_failed: %w", err)
	}

	return nil
}

/*
SoftDelete marks a user account as deleted using their ID.

Description: Retention-friendly deletion by setting deletedat.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Side-effect failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1 AND deletedat IS NULL"
	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_soft_delete_failed: %w", err)
	}
	return nil
}

/*
List returns a page of accounts ordered by creation time (newest first).

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Page of accounts
  - int: Total count for pagination metadata
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.account WHERE deletedat IS NULL"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]*User, 0, params.Limit)
	for rows.Next() {
		account, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return accounts, total, nil
}
