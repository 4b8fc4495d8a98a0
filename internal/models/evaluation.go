package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation statuses and categories. The pipeline only ever produces
// completed evaluations; a failed run produces none.
const (
	EvaluationStatusCompleted = "completed"

	CategoryRejected    = "rejected"
	CategoryRevisit     = "revisit"
	CategoryShortlisted = "shortlisted"
)

// ParameterFeedback is the per-rubric-parameter feedback entry. Order matches
// the hackathon's judging parameter order.
type ParameterFeedback struct {
	Parameter string `json:"parameter"`
	Feedback  string `json:"feedback"`
}

// Evaluation is the scored outcome of analyzing a submission. Records are
// immutable after creation.
type Evaluation struct {
	ID                uint                                   `gorm:"primaryKey" json:"id"`
	SubmissionID      uint                                   `gorm:"not null;index" json:"submission_id"`
	Status            string                                 `gorm:"size:32;not null" json:"status"`
	Category          string                                 `gorm:"size:32;not null" json:"category"`
	ParameterFeedback datatypes.JSONSlice[ParameterFeedback] `json:"parameter_feedback"`
	OverallScore      float64                                `gorm:"not null" json:"overall_score"`
	OverallReason     string                                 `gorm:"type:text" json:"overall_reason"`
	Summary           string                                 `gorm:"type:text" json:"summary"`
	Strengths         datatypes.JSONSlice[string]            `json:"strengths"`
	Improvement       datatypes.JSONSlice[string]            `json:"improvement"`
	ActionableSteps   datatypes.JSONSlice[string]            `json:"actionable_steps"`
	CreatedAt         time.Time                              `json:"created_at"`
}
