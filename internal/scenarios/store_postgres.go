// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// PostgreSQL implementation of the scenario catalog storage.
package scenarios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-app/lexora/internal/platform/apperr"
	"github.com/lexora-app/lexora/pkg/pagination"
)

const scenarioColumns = `
	id, title, description, context, decisions, tags, category,
	difficulty, language, region, createdby, published, views,
	createdat, updatedat`

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanScenario hydrates a Scenario from a pgx row, decoding the JSONB decisions.
func scanScenario(row pgx.Row) (*Scenario, error) {
	scenario := &Scenario{}
	var decisions []byte

	err := row.Scan(
		&scenario.ID,
		&scenario.Title,
		&scenario.Description,
		&scenario.Context,
		&decisions,
		&scenario.Tags,
		&scenario.Category,
		&scenario.Difficulty,
		&scenario.Language,
		&scenario.Region,
		&scenario.CreatedBy,
		&scenario.Published,
		&scenario.Views,
		&scenario.CreatedAt,
		&scenario.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(decisions, &scenario.Decisions); err != nil {
		return nil, fmt.Errorf("postgres_scenario_repo_decisions_decode_failed: %w", err)
	}

	return scenario, nil
}

/*
Create persists a new scenario submission into the content.scenario table.

Parameters:
  - context: context.Context
  - scenario: *Scenario

Returns:
  - error: Encoding or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, scenario *Scenario) error {
	const query = `
		INSERT INTO content.scenario (
			id, title, description, context, decisions, tags, category,
			difficulty, language, region, createdby, published, views,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	decisions, err := json.Marshal(scenario.Decisions)
	if err != nil {
		return fmt.Errorf("postgres_scenario_repo_decisions_encode_failed: %w", err)
	}

	now := time.Now()
	if scenario.CreatedAt.IsZero() {
		scenario.CreatedAt = now
	}
	scenario.UpdatedAt = now

	_, err = repository.pool.Exec(context, query,
		scenario.ID,
		scenario.Title,
		scenario.Description,
		scenario.Context,
		decisions,
		scenario.Tags,
		scenario.Category,
		scenario.Difficulty,
		scenario.Language,
		scenario.Region,
		scenario.CreatedBy,
		scenario.Published,
		scenario.Views,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_scenario_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a single scenario by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Scenario: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM content.scenario
		WHERE id = $1`

	scenario, err := scanScenario(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Scenario")
		}
		return nil, fmt.Errorf("postgres_scenario_repo_find_by_id_failed: %w", err)
	}

	return scenario, nil
}

/*
List returns a filtered page of scenarios ordered by creation time (newest first).

Description: Filters compose dynamically; the tag filter uses the TEXT[]
containment operator so the GIN index applies.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []*Scenario: Page of scenarios
  - int: Total count matching the filter
  - error: Storage failures
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Scenario, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.PublishedOnly {
		where += " AND published = TRUE"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if len(filter.Tags) > 0 {
		args = append(args, filter.Tags)
		where += fmt.Sprintf(" AND tags @> $%d", len(args))
	}

	countQuery := "SELECT COUNT(*) FROM content.scenario" + where

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_scenario_repo_count_failed: %w", err)
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM content.scenario
		%s
		ORDER BY createdat DESC
		LIMIT $%d OFFSET $%d`, scenarioColumns, where, len(args)-1, len(args))

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_scenario_repo_list_failed: %w", err)
	}
	defer rows.Close()

	page := make([]*Scenario, 0, params.Limit)
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_scenario_repo_list_scan_failed: %w", err)
		}
		page = append(page, scenario)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_scenario_repo_list_rows_failed: %w", err)
	}

	return page, total, nil
}

/*
SetPublished flips the publication flag for a scenario.

Parameters:
  - context: context.Context
  - id: string
  - published: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) SetPublished(context context.Context, id string, published bool) error {
	const query = "UPDATE content.scenario SET published = $2, updatedat = $3 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, id, published, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_scenario_repo_set_published_failed: %w", err)
	}

	return nil
}

/*
IncrementViews bumps the view counter atomically.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) IncrementViews(context context.Context, id string) error {
	const query = "UPDATE content.scenario SET views = views + 1 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_scenario_repo_increment_views_failed: %w", err)
	}

	return nil
}
