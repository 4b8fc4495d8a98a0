package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hackeval-go-api/internal/models"
)

// RollupRepository maintains the per-hackathon category and participant sets.
// Both writes are upserts so the rollup stage survives at-least-once delivery.
type RollupRepository interface {
	UpsertCategory(ctx context.Context, hackathonID, studentID, submissionID uint, category string) error
	AddParticipant(ctx context.Context, hackathonID, studentID uint) error
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.HackathonRollup, error)
	ListParticipants(ctx context.Context, hackathonID uint) ([]models.HackathonParticipant, error)
}

type rollupRepository struct {
	db *gorm.DB
}

// NewRollupRepository instantiates the repository.
func NewRollupRepository(db *gorm.DB) RollupRepository {
	return &rollupRepository{db: db}
}

// UpsertCategory assigns the student to a single category bucket. A second
// run for the same (hackathon, student) replaces the previous assignment, so
// the three sets stay disjoint.
func (r *rollupRepository) UpsertCategory(ctx context.Context, hackathonID, studentID, submissionID uint, category string) error {
	rollup := models.HackathonRollup{
		HackathonID:  hackathonID,
		StudentID:    studentID,
		SubmissionID: submissionID,
		Category:     category,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hackathon_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "submission_id", "updated_at"}),
	}).Create(&rollup).Error
}

func (r *rollupRepository) AddParticipant(ctx context.Context, hackathonID, studentID uint) error {
	participant := models.HackathonParticipant{
		HackathonID: hackathonID,
		StudentID:   studentID,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hackathon_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&participant).Error
}

func (r *rollupRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.HackathonRollup, error) {
	var rollups []models.HackathonRollup
	if err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("student_id ASC").
		Find(&rollups).Error; err != nil {
		return nil, err
	}

	return rollups, nil
}

func (r *rollupRepository) ListParticipants(ctx context.Context, hackathonID uint) ([]models.HackathonParticipant, error) {
	var participants []models.HackathonParticipant
	if err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("student_id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}

	return participants, nil
}
