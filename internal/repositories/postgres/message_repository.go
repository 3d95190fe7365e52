package postgres

import (
	"context"
	"time"

	"musteat-service/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	ListByReceiver(ctx context.Context, receiverID, messageType string) ([]models.Message, error)
	CountByType(ctx context.Context, receiverID string) (models.MessageCounts, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, receiverID string) error
	Delete(ctx context.Context, id string) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByReceiver(ctx context.Context, receiverID, messageType string) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("receiver_id = ?", receiverID)
	if messageType != "" && messageType != "all" {
		q = q.Where("type = ?", messageType)
	}
	var messages []models.Message
	err := q.Order("created DESC").Find(&messages).Error
	return messages, err
}

func (r *messageRepository) CountByType(ctx context.Context, receiverID string) (models.MessageCounts, error) {
	var counts models.MessageCounts
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Message{}).Where("receiver_id = ?", receiverID)
	}
	if err := base().Count(&counts.All).Error; err != nil {
		return counts, err
	}
	if err := base().Where("type = ?", models.MessageTypeComment).Count(&counts.Comment).Error; err != nil {
		return counts, err
	}
	if err := base().Where("type = ?", models.MessageTypeVote).Count(&counts.Vote).Error; err != nil {
		return counts, err
	}
	if err := base().Where("type = ?", models.MessageTypeSystem).Count(&counts.System).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

func (r *messageRepository) MarkRead(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "read_time": &now}).Error
}

func (r *messageRepository) MarkAllRead(ctx context.Context, receiverID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Updates(map[string]interface{}{"read": true, "read_time": &now}).Error
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id).Error
}
