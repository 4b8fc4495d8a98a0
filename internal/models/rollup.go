package models

import "time"

// HackathonRollup records the category assignment for one student in one
// hackathon. The unique index makes the rollup step idempotent: re-delivering
// the update replaces the category instead of appending, so every student
// lands in exactly one of the three category sets.
type HackathonRollup struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HackathonID  uint      `gorm:"not null;uniqueIndex:idx_rollup_member" json:"hackathon_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_rollup_member" json:"student_id"`
	Category     string    `gorm:"size:32;not null" json:"category"`
	SubmissionID uint      `gorm:"not null" json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HackathonParticipant marks a student as having submitted to a hackathon at
// least once. Inserts are set-union semantics: duplicates are no-ops.
type HackathonParticipant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HackathonID uint      `gorm:"not null;uniqueIndex:idx_participant_member" json:"hackathon_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_participant_member" json:"student_id"`
	CreatedAt   time.Time `json:"created_at"`
}
