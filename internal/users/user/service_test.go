// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/pkg/pagination"
	"github.com/lexora-app/lexora/pkg/pointer"
)

// fakeRepository is an in-memory account store for service tests.
type fakeRepository struct {
	accounts map[string]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{accounts: map[string]*User{}}
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*User, error) {
	account, ok := repo.accounts[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *account
	return &copied, nil
}

func (repo *fakeRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, account := range repo.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeRepository) Create(_ context.Context, account *User) error {
	copied := *account
	repo.accounts[account.ID] = &copied
	return nil
}

func (repo *fakeRepository) Update(_ context.Context, account *User) error {
	if _, ok := repo.accounts[account.ID]; !ok {
		return apperr.NotFound("User")
	}
	copied := *account
	repo.accounts[account.ID] = &copied
	return nil
}

func (repo *fakeRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	account, ok := repo.accounts[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	account.PasswordHash = newHash
	return nil
}

func (repo *fakeRepository) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	account, ok := repo.accounts[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	account.LastLogin = &at
	return nil
}

func (repo *fakeRepository) SetTwoFactor(_ context.Context, userID, secret string, enabled bool) error {
	account, ok := repo.accounts[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	account.TwoFactorSecret = secret
	account.TwoFactorEnabled = enabled
	return nil
}

func (repo *fakeRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := repo.accounts[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.accounts, id)
	return nil
}

func (repo *fakeRepository) List(_ context.Context, _ pagination.Params) ([]*User, int, error) {
	page := make([]*User, 0, len(repo.accounts))
	for _, account := range repo.accounts {
		copied := *account
		page = append(page, &copied)
	}
	return page, len(page), nil
}

// fakeNotifier records welcome dispatches.
type fakeNotifier struct {
	welcomed []string
}

func (notifier *fakeNotifier) SendWelcome(_ context.Context, email, _ string) error {
	notifier.welcomed = append(notifier.welcomed, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *fakeNotifier) {
	t.Helper()

	hasher, err := sec.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	return NewService(repo, hasher, notifier), repo, notifier
}

func TestCreate(t *testing.T) {
	t.Run("generates_password_when_absent", func(t *testing.T) {
		service, _, notifier := newTestService(t)

		result, err := service.Create(context.Background(), CreateInput{
			Email:     "member@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Claims:    []string{"read_user"},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.User.ID)
		assert.GreaterOrEqual(t, len(result.GeneratedPassword), sec.MinPasswordLength)
		assert.True(t, result.User.IsActive)
		assert.Equal(t, []sec.Claim{sec.ClaimReadUser}, result.User.Claims)

		// Password hash never matches the plain text.
		assert.NotEqual(t, result.GeneratedPassword, result.User.PasswordHash)

		assert.Equal(t, []string{"member@example.com"}, notifier.welcomed)
	})

	t.Run("keeps_supplied_password", func(t *testing.T) {
		service, repo, _ := newTestService(t)

		result, err := service.Create(context.Background(), CreateInput{
			Email:     "member@example.com",
			Password:  "correct horse battery",
			FirstName: "Ada",
		})
		require.NoError(t, err)
		assert.Empty(t, result.GeneratedPassword)

		stored, err := repo.FindByID(context.Background(), result.User.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")))
	})

	t.Run("normalizes_email", func(t *testing.T) {
		service, _, _ := newTestService(t)

		result, err := service.Create(context.Background(), CreateInput{
			Email:     " Member@Example.COM ",
			FirstName: "Ada",
		})
		require.NoError(t, err)
		assert.Equal(t, "member@example.com", result.User.Email)
	})

	t.Run("rejects_duplicate_email", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Create(context.Background(), CreateInput{Email: "member@example.com", FirstName: "Ada"})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), CreateInput{Email: "member@example.com", FirstName: "Bob"})
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "BAD_REQUEST", appError.Code)

		// Case variants collapse to the same canonical address.
		_, err = service.Create(context.Background(), CreateInput{Email: "MEMBER@example.com", FirstName: "Eve"})
		require.Error(t, err)
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "BAD_REQUEST", appError.Code)
	})

	t.Run("rejects_unknown_claim", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Create(context.Background(), CreateInput{
			Email:     "member@example.com",
			FirstName: "Ada",
			Claims:    []string{"rule_the_world"},
		})
		require.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	service, repo, _ := newTestService(t)

	result, err := service.Create(context.Background(), CreateInput{
		Email:     "member@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	t.Run("writes_only_provided_fields", func(t *testing.T) {
		updated, err := service.Update(context.Background(), result.User.ID, UpdateInput{
			FirstName: pointer.To("Augusta"),
			IsStaff:   pointer.To(true),
		})
		require.NoError(t, err)

		assert.Equal(t, "Augusta", updated.FirstName)
		assert.Equal(t, "Lovelace", updated.LastName)
		assert.True(t, updated.IsStaff)
		assert.True(t, updated.IsActive)
	})

	t.Run("replaces_claims_wholesale", func(t *testing.T) {
		updated, err := service.Update(context.Background(), result.User.ID, UpdateInput{
			Claims: pointer.To([]string{"read_user", "update_user"}),
		})
		require.NoError(t, err)
		assert.Equal(t, []sec.Claim{sec.ClaimReadUser, sec.ClaimUpdateUser}, updated.Claims)

		stored, err := repo.FindByID(context.Background(), result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Claims, stored.Claims)
	})

	t.Run("rejects_unknown_claim", func(t *testing.T) {
		_, err := service.Update(context.Background(), result.User.ID, UpdateInput{
			Claims: pointer.To([]string{"rule_the_world"}),
		})
		require.Error(t, err)
	})
}

func TestDelete(t *testing.T) {
	service, _, _ := newTestService(t)

	result, err := service.Create(context.Background(), CreateInput{Email: "member@example.com", FirstName: "Ada"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), result.User.ID))

	// Deleting an already deleted account reports not found.
	err = service.Delete(context.Background(), result.User.ID)
	require.Error(t, err)

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

func TestLoadPrincipal(t *testing.T) {
	service, repo, _ := newTestService(t)

	result, err := service.Create(context.Background(), CreateInput{
		Email:     "member@example.com",
		FirstName: "Ada",
		Claims:    []string{"read_user"},
	})
	require.NoError(t, err)

	t.Run("active_account", func(t *testing.T) {
		principal, err := service.LoadPrincipal(context.Background(), result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, principal.UserID)
		assert.True(t, principal.HasAnyClaim(sec.ClaimReadUser))
	})

	t.Run("deactivated_account_is_locked_out", func(t *testing.T) {
		repo.accounts[result.User.ID].IsActive = false

		_, err := service.LoadPrincipal(context.Background(), result.User.ID)
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("missing_account_is_unauthorized", func(t *testing.T) {
		_, err := service.LoadPrincipal(context.Background(), "018f2f4e-0000-7000-8000-000000000000")
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}
