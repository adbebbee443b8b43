// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// HTTP delivery layer for the scenario catalog.
package scenarios

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/lexora/internal/platform/middleware"
	requestutil "github.com/lexora-app/lexora/internal/platform/request"
	"github.com/lexora-app/lexora/internal/platform/respond"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/pkg/pagination"
	"github.com/lexora-app/lexora/pkg/query"
	"github.com/lexora-app/lexora/pkg/slug"
)

// # Definitions & Constructors

// Handler implements the scenario catalog HTTP endpoints.
type Handler struct {
	scenarioService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{scenarioService: service}
}

// Routes returns a [chi.Router] configured with catalog routes.
//
// # Endpoints
//   - POST   /                        : Submits a new scenario (public).
//   - GET    /                        : Lists published scenarios (public).
//   - GET    /{scenarioID}            : Fetches one scenario (public).
//   - POST   /{scenarioID}/publish    : Publishes (manage_scenarios).
//   - POST   /{scenarioID}/unpublish  : Unpublishes (manage_scenarios).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{scenarioID}", handler.get)

	router.Group(func(moderation chi.Router) {
		moderation.Use(middleware.RequireClaims(sec.ClaimManageScenarios))
		moderation.Post("/{scenarioID}/publish", handler.publish)
		moderation.Post("/{scenarioID}/unpublish", handler.unpublish)
	})

	return router
}

/*
Create accepts a community scenario submission.

POST /api/v1/scenarios

Description: Open endpoint. Submissions are attributed to the signed-in
member when a session is present, otherwise anonymous. New submissions are
unpublished until moderated.

Request:
  - Body: CreateInput (title, description, context, decisions, tags, ...)

Response:
  - 201: Scenario: Persisted submission
  - 400: ErrInvalidJSON: Malformed body or failed validation
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Attribute the submission when a session is present.
	if principal := requestutil.Principal(request); principal != nil {
		input.CreatedBy = principal.UserID
	}

	scenario, err := handler.scenarioService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, scenario)
}

/*
List returns a page of published scenarios.

GET /api/v1/scenarios?category=&tags=&page=&limit=

Description: The tags parameter is comma-separated; a scenario matches only
when it carries every requested tag. Filter values go through the same slug
normalization as stored values.

Response:
  - 200: []Scenario with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Category: slug.From(request.URL.Query().Get("category")),
		Tags:     NormalizeTags(query.StringSlice(request.URL.Query().Get("tags"))),
	}

	scenarios, total, err := handler.scenarioService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, scenarios, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get fetches a single scenario and records the view.

GET /api/v1/scenarios/{scenarioID}

Response:
  - 200: Scenario
  - 404: Not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	scenario, err := handler.scenarioService.Get(request.Context(), requestutil.ID(request, "scenarioID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, scenario)
}

/*
Publish makes a scenario visible to learners.

POST /api/v1/scenarios/{scenarioID}/publish

Response:
  - 200: Scenario: Updated entity
  - 401: Missing manage_scenarios claim
  - 404: Not found
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	scenario, err := handler.scenarioService.Publish(request.Context(), requestutil.ID(request, "scenarioID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, scenario)
}

/*
Unpublish hides a scenario from learner-facing listings.

POST /api/v1/scenarios/{scenarioID}/unpublish

Response:
  - 200: Scenario: Updated entity
  - 401: Missing manage_scenarios claim
  - 404: Not found
*/
func (handler *Handler) unpublish(writer http.ResponseWriter, request *http.Request) {
	scenario, err := handler.scenarioService.Unpublish(request.Context(), requestutil.ID(request, "scenarioID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, scenario)
}
