package postgres

import (
	"context"

	"musteat-service/internal/models"

	"gorm.io/gorm"
)

type AchievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	ListByUser(ctx context.Context, userID string) ([]models.Achievement, error)
	Delete(ctx context.Context, id string) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.WithContext(ctx).First(&achievement, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created DESC").
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Achievement{}, "id = ?", id).Error
}
