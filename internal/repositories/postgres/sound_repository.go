package postgres

import (
	"context"

	"musteat-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SoundRepository interface {
	// Upsert replaces a user's existing binding for the same action.
	Upsert(ctx context.Context, sound *models.UserSound) error
	FindByID(ctx context.Context, id string) (*models.UserSound, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserSound, error)
	Delete(ctx context.Context, id string) error
}

type soundRepository struct {
	db *gorm.DB
}

func NewSoundRepository(db *gorm.DB) SoundRepository {
	return &soundRepository{db: db}
}

func (r *soundRepository) Upsert(ctx context.Context, sound *models.UserSound) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "file_url"}),
	}).Create(sound).Error
}

func (r *soundRepository) FindByID(ctx context.Context, id string) (*models.UserSound, error) {
	var sound models.UserSound
	err := r.db.WithContext(ctx).First(&sound, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sound, nil
}

func (r *soundRepository) ListByUser(ctx context.Context, userID string) ([]models.UserSound, error) {
	var sounds []models.UserSound
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created DESC").
		Find(&sounds).Error
	return sounds, err
}

func (r *soundRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.UserSound{}, "id = ?", id).Error
}
