// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package scenarios

import (
	"context"
	"log/slog"

	"github.com/lexora-app/lexora/internal/platform/ctxutil"
	"github.com/lexora-app/lexora/internal/platform/validate"
	"github.com/lexora-app/lexora/pkg/pagination"
	"github.com/lexora-app/lexora/pkg/slice"
	"github.com/lexora-app/lexora/pkg/slug"
	"github.com/lexora-app/lexora/pkg/uuid"
)

// Limits for community submissions.
const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxContextLength     = 4000
	maxDecisions         = 10
)

// Service implements the catalog use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// # Submission Flow

// CreateInput holds a community scenario submission.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Context     string     `json:"context"`
	Decisions   []Decision `json:"decisions"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	Difficulty  string     `json:"difficulty"`
	Language    string     `json:"language"`
	Region      string     `json:"region"`

	// CreatedBy is set by the handler from the session, never by the client.
	CreatedBy string `json:"-"`
}

/*
Create validates and persists a new scenario submission.

Description: Submissions land unpublished and stay invisible to learners
until a moderator publishes them.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Scenario: Persisted entity
  - error: Validation or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Scenario, error) {

	// 1. Validate shape before touching storage.
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, maxTitleLength).
		Required(FieldDescription, input.Description).
		MaxLen(FieldDescription, input.Description, maxDescriptionLength).
		MaxLen(FieldContext, input.Context, maxContextLength).
		Required(FieldCategory, input.Category).
		OneOf(FieldDifficulty, input.Difficulty,
			DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced)

	// 2. Every scenario needs at least one decision, and every decision needs
	// its option text plus both insights.
	validator.Custom(FieldDecisions, len(input.Decisions) == 0,
		"At least one decision is required")
	validator.Custom(FieldDecisions, len(input.Decisions) > maxDecisions,
		"Too many decisions")
	for _, decision := range input.Decisions {
		if decision.OptionText == "" || decision.LegalInsight == "" || decision.EthicalInsight == "" {
			validator.Custom(FieldDecisions, true,
				"Each decision requires option_text, legal_insight, and ethical_insight")
			break
		}
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	scenario := &Scenario{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Context:     input.Context,
		Decisions:   input.Decisions,
		Tags:        NormalizeTags(input.Tags),
		Category:    slug.From(input.Category),
		Difficulty:  input.Difficulty,
		Language:    input.Language,
		Region:      input.Region,
		CreatedBy:   input.CreatedBy,
		Published:   false,
	}

	if err := service.repository.Create(context, scenario); err != nil {
		return nil, err
	}

	return scenario, nil
}

// NormalizeTags slugifies tags and drops blanks and duplicates so stored
// values always match filter input after the same normalization.
func NormalizeTags(tags []string) []string {
	slugged := slice.Filter(slice.Map(tags, slug.From), func(tag string) bool {
		return tag != ""
	})

	seen := make(map[string]struct{}, len(slugged))
	cleaned := make([]string, 0, len(slugged))
	for _, tag := range slugged {
		if _, duplicate := seen[tag]; duplicate {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}

// # Catalog Reads

/*
Get returns a single scenario and records the view.

Description: The view counter is bumped best-effort after the read; a
failed bump never fails the request.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Scenario: Hydrated entity
  - error: Validation, apperr.NotFound, or storage errors
*/
func (service *Service) Get(context context.Context, id string) (*Scenario, error) {
	validator := &validate.Validator{}
	if err := validator.Required(FieldScenarioID, id).UUID(FieldScenarioID, id).Err(); err != nil {
		return nil, err
	}

	scenario, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.repository.IncrementViews(context, id); err != nil {
		ctxutil.GetLogger(context).Warn("scenario_view_count_failed",
			slog.String("scenario_id", id),
			slog.String("error", err.Error()),
		)
	} else {
		scenario.Views++
	}

	return scenario, nil
}

/*
List returns a page of published scenarios for learners.

Parameters:
  - context: context.Context
  - filter: ListFilter (PublishedOnly is forced on)
  - params: pagination.Params

Returns:
  - []*Scenario: Page of scenarios
  - int: Total matching the filter
  - error: Storage failures
*/
func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Scenario, int, error) {

	// Learner-facing listings never expose unpublished submissions.
	filter.PublishedOnly = true

	return service.repository.List(context, filter, params)
}

// # Moderation

/*
Publish makes a scenario visible in learner-facing listings.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Scenario: Updated entity
  - error: Validation, apperr.NotFound, or storage errors
*/
func (service *Service) Publish(context context.Context, id string) (*Scenario, error) {
	return service.setPublished(context, id, true)
}

/*
Unpublish removes a scenario from learner-facing listings.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Scenario: Updated entity
  - error: Validation, apperr.NotFound, or storage errors
*/
func (service *Service) Unpublish(context context.Context, id string) (*Scenario, error) {
	return service.setPublished(context, id, false)
}

func (service *Service) setPublished(context context.Context, id string, published bool) (*Scenario, error) {
	validator := &validate.Validator{}
	if err := validator.Required(FieldScenarioID, id).UUID(FieldScenarioID, id).Err(); err != nil {
		return nil, err
	}

	// Surface 404 before mutating.
	scenario, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if scenario.Published == published {
		return scenario, nil
	}

	if err := service.repository.SetPublished(context, id, published); err != nil {
		return nil, err
	}

	scenario.Published = published
	return scenario, nil
}
