package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackeval-go-api/internal/models"
)

// HackathonRepository provides access to hackathon records.
type HackathonRepository interface {
	Create(ctx context.Context, hackathon *models.Hackathon) error
	GetByID(ctx context.Context, id uint) (models.Hackathon, error)
}

type hackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository instantiates the repository.
func NewHackathonRepository(db *gorm.DB) HackathonRepository {
	return &hackathonRepository{db: db}
}

func (r *hackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).Create(hackathon).Error
}

func (r *hackathonRepository) GetByID(ctx context.Context, id uint) (models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).First(&hackathon, id).Error; err != nil {
		return models.Hackathon{}, err
	}

	return hackathon, nil
}
