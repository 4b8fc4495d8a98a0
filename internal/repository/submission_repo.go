package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackeval-go-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	HackathonID *uint
	StudentID   *uint
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	SetEvaluation(ctx context.Context, submissionID, evaluationID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Evaluation").
		First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).Preload("Evaluation")

	if filter.HackathonID != nil {
		query = query.Where("hackathon_id = ?", *filter.HackathonID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// SetEvaluation attaches the evaluation reference to an already persisted
// submission. This is the single permitted mutation of a submission row.
func (r *submissionRepository) SetEvaluation(ctx context.Context, submissionID, evaluationID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("evaluation_id", evaluationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
