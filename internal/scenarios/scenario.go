// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

/*
Package scenarios implements the learning content catalog.

A scenario is a situational dilemma with a set of decisions, each carrying a
legal and an ethical insight. Scenarios are community-submitted (public
creation) and surfaced to learners once published by a moderator.
*/
package scenarios

import "time"

// # Domain Entities

// Decision is one selectable option within a scenario.
type Decision struct {
	OptionText     string `json:"option_text"`
	LegalInsight   string `json:"legal_insight"`
	EthicalInsight string `json:"ethical_insight"`
}

// Scenario represents a situational dilemma in the catalog.
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Context sets the scene the learner is placed in.
	Context string `json:"context"`

	// Decisions are stored as a JSONB document; order is presentation order.
	Decisions []Decision `json:"decisions"`

	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Language   string   `json:"language"`
	Region     string   `json:"region"`

	// CreatedBy is empty for anonymous submissions.
	CreatedBy string `json:"created_by,omitempty"`

	// Published gates visibility in learner-facing listings.
	Published bool `json:"published"`
	Views     int  `json:"views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContext     = "context"
	FieldDecisions   = "decisions"
	FieldCategory    = "category"
	FieldDifficulty  = "difficulty"
	FieldScenarioID  = "scenario_id"
)

// Recognized difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)
