package models

import "time"

// Submission is one participant's uploaded artifact for one hackathon. The
// evaluation reference is set exactly once, after the processing pipeline
// completes; a submission whose pipeline failed keeps a nil EvaluationID.
type Submission struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	HackathonID   uint        `gorm:"not null;index" json:"hackathon_id"`
	StudentID     uint        `gorm:"not null;index" json:"student_id"`
	SubmissionURL string      `gorm:"size:512;not null" json:"submission_url"`
	EvaluationID  *uint       `json:"evaluation_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Evaluation    *Evaluation `gorm:"foreignKey:EvaluationID" json:"evaluation,omitempty"`
}

// IsEvaluated reports whether the pipeline attached an evaluation.
func (s Submission) IsEvaluated() bool {
	return s.EvaluationID != nil
}
