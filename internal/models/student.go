package models

import "time"

// Student is a registered hackathon participant.
type Student struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:256;not null" json:"name"`
	Email       string       `gorm:"size:256;uniqueIndex" json:"email"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Submissions []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
}
