package postgres

import (
	"context"
	"time"

	"musteat-service/internal/models"

	"gorm.io/gorm"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, id string) (*models.Entry, error)
	ListRanked(ctx context.Context, limit, offset int) ([]models.Entry, error)
	Count(ctx context.Context) (int64, error)
	// ApplyVote adjusts the running vote total with a single server-side
	// UPDATE. Never read-modify-write: concurrent voters must not lose
	// increments.
	ApplyVote(ctx context.Context, entryID string, delta int, trend string) error
	AdjustCommentCount(ctx context.Context, entryID string, delta int) error
}

type entryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *models.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *entryRepository) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListRanked orders by votes desc; newly listed entries win ties.
func (r *entryRepository) ListRanked(ctx context.Context, limit, offset int) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.WithContext(ctx).
		Order("votes DESC").
		Order("created DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Entry{}).Count(&count).Error
	return count, err
}

func (r *entryRepository) ApplyVote(ctx context.Context, entryID string, delta int, trend string) error {
	res := r.db.WithContext(ctx).Model(&models.Entry{}).
		Where("id = ?", entryID).
		UpdateColumns(map[string]interface{}{
			"votes":   gorm.Expr("votes + ?", delta),
			"trend":   trend,
			"updated": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entryRepository) AdjustCommentCount(ctx context.Context, entryID string, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Entry{}).
		Where("id = ?", entryID).
		UpdateColumns(map[string]interface{}{
			"comment_count": gorm.Expr("comment_count + ?", delta),
			"updated":       time.Now(),
		}).Error
}
