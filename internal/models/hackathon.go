package models

import (
	"time"

	"gorm.io/datatypes"
)

// Hackathon describes one event, its rubric inputs, and the submission gate.
type Hackathon struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	Title             string                      `gorm:"size:256;not null" json:"title"`
	Description       string                      `gorm:"type:text" json:"description"`
	ProblemStatement  string                      `gorm:"type:text" json:"problem_statement"`
	Context           string                      `gorm:"type:text" json:"context"`
	JudgingParameters datatypes.JSONSlice[string] `json:"judging_parameters"`
	CustomPrompt      string                      `gorm:"type:text" json:"custom_prompt"`
	ResultPublished   bool                        `gorm:"not null;default:false" json:"result_published"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// AcceptsSubmissions reports whether new submissions may still be recorded.
// Publishing the results closes the event.
func (h Hackathon) AcceptsSubmissions() bool {
	return !h.ResultPublished
}
