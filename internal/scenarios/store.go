// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package scenarios

import (
	"context"

	"github.com/lexora-app/lexora/pkg/pagination"
)

// # Data Access

// ListFilter narrows a catalog listing.
type ListFilter struct {
	// Category matches exactly when non-empty. Values are slug-normalized.
	Category string
	// Tags matches scenarios containing every listed tag. Values are
	// slug-normalized.
	Tags []string
	// PublishedOnly hides unpublished submissions. Learner-facing listings
	// always set this; moderators may clear it.
	PublishedOnly bool
}

// Repository defines the data access contract for the scenario catalog.
type Repository interface {

	/*
		Create persists a new scenario submission.

		Parameters:
		  - context: context.Context
		  - scenario: *Scenario

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, scenario *Scenario) error

	/*
		FindByID returns a single scenario.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Scenario: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Scenario, error)

	/*
		List returns a filtered page of scenarios ordered by creation time.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter
		  - params: pagination.Params

		Returns:
		  - []*Scenario: Page of scenarios
		  - int: Total count matching the filter
		  - error: Storage failures
	*/
	List(context context.Context, filter ListFilter, params pagination.Params) ([]*Scenario, int, error)

	/*
		SetPublished flips the publication flag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - published: bool

		Returns:
		  - error: Persistence failures
	*/
	SetPublished(context context.Context, id string, published bool) error

	/*
		IncrementViews bumps the view counter for a scenario.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	IncrementViews(context context.Context, id string) error
}
