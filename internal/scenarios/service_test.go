// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package scenarios

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/pkg/pagination"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	scenarios map[string]*Scenario

	// lastFilter records the filter the service passed to List.
	lastFilter ListFilter
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{scenarios: map[string]*Scenario{}}
}

func (repo *fakeRepository) Create(_ context.Context, scenario *Scenario) error {
	copied := *scenario
	repo.scenarios[scenario.ID] = &copied
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*Scenario, error) {
	scenario, ok := repo.scenarios[id]
	if !ok {
		return nil, apperr.NotFound("Scenario")
	}
	copied := *scenario
	return &copied, nil
}

func (repo *fakeRepository) List(_ context.Context, filter ListFilter, _ pagination.Params) ([]*Scenario, int, error) {
	repo.lastFilter = filter

	matched := []*Scenario{}
	for _, scenario := range repo.scenarios {
		if filter.PublishedOnly && !scenario.Published {
			continue
		}
		copied := *scenario
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (repo *fakeRepository) SetPublished(_ context.Context, id string, published bool) error {
	scenario, ok := repo.scenarios[id]
	if !ok {
		return apperr.NotFound("Scenario")
	}
	scenario.Published = published
	return nil
}

func (repo *fakeRepository) IncrementViews(_ context.Context, id string) error {
	scenario, ok := repo.scenarios[id]
	if !ok {
		return apperr.NotFound("Scenario")
	}
	scenario.Views++
	return nil
}

func validInput() CreateInput {
	return CreateInput{
		Title:       "The borrowed bicycle",
		Description: "A friend lends you a bicycle that turns out to be stolen.",
		Context:     "You discover the serial number matches a police report.",
		Decisions: []Decision{
			{
				OptionText:     "Return it to the police",
				LegalInsight:   "Possession of stolen goods requires knowledge of the theft.",
				EthicalInsight: "Honesty protects both you and the rightful owner.",
			},
		},
		Tags:       []string{"Property Law", "property-law", ""},
		Category:   "criminal-law",
		Difficulty: DifficultyBeginner,
		Language:   "en",
		Region:     "us",
	}
}

func TestCreate(t *testing.T) {
	t.Run("valid_submission_lands_unpublished", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewService(repo)

		scenario, err := service.Create(context.Background(), validInput())
		require.NoError(t, err)

		assert.NotEmpty(t, scenario.ID)
		assert.False(t, scenario.Published)
		assert.Zero(t, scenario.Views)

		// Tags are slug-normalized and deduplicated; blanks are dropped.
		assert.Equal(t, []string{"property-law"}, scenario.Tags)

		stored, err := repo.FindByID(context.Background(), scenario.ID)
		require.NoError(t, err)
		assert.Equal(t, scenario.Title, stored.Title)
	})

	t.Run("rejects_missing_decisions", func(t *testing.T) {
		service := NewService(newFakeRepository())

		input := validInput()
		input.Decisions = nil

		_, err := service.Create(context.Background(), input)
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("rejects_incomplete_decision", func(t *testing.T) {
		service := NewService(newFakeRepository())

		input := validInput()
		input.Decisions[0].EthicalInsight = ""

		_, err := service.Create(context.Background(), input)
		require.Error(t, err)
	})

	t.Run("rejects_unknown_difficulty", func(t *testing.T) {
		service := NewService(newFakeRepository())

		input := validInput()
		input.Difficulty = "impossible"

		_, err := service.Create(context.Background(), input)
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	t.Run("records_view", func(t *testing.T) {
		fetched, err := service.Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.Views)

		stored, err := repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Views)
	})

	t.Run("unknown_id_is_not_found", func(t *testing.T) {
		_, err := service.Get(context.Background(), "018f2f4e-0000-7000-8000-000000000000")
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("malformed_id_is_validation_error", func(t *testing.T) {
		_, err := service.Get(context.Background(), "not-a-uuid")
		require.Error(t, err)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})
}

func TestList_LearnersOnlySeePublished(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	draft, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	published, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = service.Publish(context.Background(), published.ID)
	require.NoError(t, err)

	// A caller trying to opt into drafts is still forced to published only.
	page, total, err := service.List(context.Background(), ListFilter{PublishedOnly: false}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.True(t, repo.lastFilter.PublishedOnly)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, published.ID, page[0].ID)
	assert.NotEqual(t, draft.ID, page[0].ID)
}

func TestPublish(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	scenario, err := service.Publish(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, scenario.Published)

	// Publishing twice is a no-op, not an error.
	scenario, err = service.Publish(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, scenario.Published)

	scenario, err = service.Unpublish(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, scenario.Published)
}
