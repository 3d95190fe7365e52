package postgres

import (
	"context"
	"time"

	"musteat-service/internal/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListTop(ctx context.Context, entryID string, limit, offset int) ([]models.Comment, error)
	CountTop(ctx context.Context, entryID string) (int64, error)
	ListReplies(ctx context.Context, rootID string, limit, offset int) ([]models.Comment, error)
	CountReplies(ctx context.Context, rootID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByParent(ctx context.Context, parentID string) error
	// AdjustLikes is a single atomic UPDATE on the like counter.
	AdjustLikes(ctx context.Context, commentID string, delta int) error

	FindLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error)
	CreateLike(ctx context.Context, like *models.CommentLike) error
	DeleteLike(ctx context.Context, id string) error
	DeleteLikesByComment(ctx context.Context, commentID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTop returns top-level comments, most liked first, newest breaking ties.
func (r *commentRepository) ListTop(ctx context.Context, entryID string, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("entry_id = ? AND parent_id IS NULL AND status = ?", entryID, models.CommentStatusNormal).
		Order("likes DESC").
		Order("created DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountTop(ctx context.Context, entryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("entry_id = ? AND parent_id IS NULL AND status = ?", entryID, models.CommentStatusNormal).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) ListReplies(ctx context.Context, rootID string, limit, offset int) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.WithContext(ctx).
		Where("root_id = ? AND status = ?", rootID, models.CommentStatusNormal).
		Order("created ASC").
		Limit(limit).
		Offset(offset).
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) CountReplies(ctx context.Context, rootID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("root_id = ? AND status = ?", rootID, models.CommentStatusNormal).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}

func (r *commentRepository) DeleteByParent(ctx context.Context, parentID string) error {
	return r.db.WithContext(ctx).
		Where("parent_id = ? OR root_id = ?", parentID, parentID).
		Delete(&models.Comment{}).Error
}

func (r *commentRepository) AdjustLikes(ctx context.Context, commentID string, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumns(map[string]interface{}{
			"likes":   gorm.Expr("likes + ?", delta),
			"updated": time.Now(),
		}).Error
}

func (r *commentRepository) FindLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error) {
	var like models.CommentLike
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *commentRepository) CreateLike(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *commentRepository) DeleteLike(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.CommentLike{}, "id = ?", id).Error
}

func (r *commentRepository) DeleteLikesByComment(ctx context.Context, commentID string) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&models.CommentLike{}).Error
}
