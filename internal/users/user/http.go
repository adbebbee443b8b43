// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// HTTP delivery layer for account management.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and the domain
// service. Every route is claim-gated: the guard chain has already verified
// the token and loaded the principal by the time a handler runs.
package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/lexora/internal/platform/middleware"
	requestutil "github.com/lexora-app/lexora/internal/platform/request"
	"github.com/lexora-app/lexora/internal/platform/respond"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements account management HTTP endpoints.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// Routes returns a [chi.Router] configured with account management routes.
//
// # Endpoints
//   - POST   /            : Provisions a new account (create_user).
//   - GET    /            : Lists accounts (read_user).
//   - GET    /{userID}    : Fetches one account (read_user).
//   - PATCH  /{userID}    : Updates an account (update_user).
//   - DELETE /{userID}    : Soft-deletes an account (delete_user).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireClaims(sec.ClaimCreateUser)).Post("/", handler.create)
	router.With(middleware.RequireClaims(sec.ClaimReadUser)).Get("/", handler.list)
	router.With(middleware.RequireClaims(sec.ClaimReadUser)).Get("/{userID}", handler.get)
	router.With(middleware.RequireClaims(sec.ClaimUpdateUser)).Patch("/{userID}", handler.update)
	router.With(middleware.RequireClaims(sec.ClaimDeleteUser)).Delete("/{userID}", handler.remove)

	return router
}

// # Request Payloads

type createRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password,omitempty"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
	Claims      []string `json:"claims"`
}

type updateRequest struct {
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	IsActive    *bool     `json:"is_active"`
	IsStaff     *bool     `json:"is_staff"`
	IsSuperuser *bool     `json:"is_superuser"`
	Claims      *[]string `json:"claims"`
}

/*
Create provisions a new user account.

POST /api/v1/users

Description: Validates input, assigns recognized claims, and persists a new
account. When no password is supplied a strong one is generated and returned
exactly once.

Request:
  - Body: createRequest (Email, Password?, FirstName, LastName, flags, Claims)

Response:
  - 201: CreateResult: Created account and one-time generated password
  - 400: ErrInvalidJSON: Bad input, unknown claim, or duplicate email
  - 401: ErrUnauthorized: Missing create_user claim
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.userService.Create(request.Context(), CreateInput{
		Email:       input.Email,
		Password:    input.Password,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		IsStaff:     input.IsStaff,
		IsSuperuser: input.IsSuperuser,
		Claims:      input.Claims,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
List returns a paginated collection of accounts.

GET /api/v1/users?page=1&limit=20

Response:
  - 200: []User with pagination metadata
  - 401: ErrUnauthorized: Missing read_user claim
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.userService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get fetches a single account by ID.

GET /api/v1/users/{userID}

Response:
  - 200: User
  - 404: ErrNotFound: Unknown or soft-deleted account
  - 401: ErrUnauthorized: Missing read_user claim
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	account, err := handler.userService.Get(request.Context(), requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
Update applies partial changes to an account.

PATCH /api/v1/users/{userID}

Request:
  - Body: updateRequest (any subset of mutable fields)

Response:
  - 200: User: Updated account
  - 400: ErrInvalidJSON: Unknown claim or malformed payload
  - 404: ErrNotFound: Unknown account
  - 401: ErrUnauthorized: Missing update_user claim
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	account, err := handler.userService.Update(request.Context(), requestutil.ID(request, "userID"), UpdateInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		IsActive:    input.IsActive,
		IsStaff:     input.IsStaff,
		IsSuperuser: input.IsSuperuser,
		Claims:      input.Claims,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
Remove soft-deletes an account.

DELETE /api/v1/users/{userID}

Response:
  - 204: No Content: Account soft-deleted
  - 404: ErrNotFound: Unknown account
  - 401: ErrUnauthorized: Missing delete_user claim
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.userService.Delete(request.Context(), requestutil.ID(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
