package postgres

import (
	"context"
	"time"

	"musteat-service/internal/models"

	"gorm.io/gorm"
)

type VoteRepository interface {
	AppendUpvote(ctx context.Context, userID, entryID string) error
	// FindLiveUpvote returns the oldest live upvote ledger row for the pair,
	// or gorm.ErrRecordNotFound.
	FindLiveUpvote(ctx context.Context, userID, entryID string) (*models.VoteLedger, error)
	DeleteLedger(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.VoteLedger, error)
	CountByEntry(ctx context.Context, entryID string) (int64, error)
	CountUpvotesForPair(ctx context.Context, userID, entryID string) (int64, error)

	FindDailyRecord(ctx context.Context, userID, entryID, date string, direction models.Direction) (*models.DailyVoteRecord, error)
	CreateDailyRecord(ctx context.Context, rec *models.DailyVoteRecord) error
	// IncrementReward bumps reward_count by one iff it is still below max.
	// The guard in the WHERE clause keeps the ladder bounded even under
	// concurrent redemptions. Returns the new count.
	IncrementReward(ctx context.Context, recordID string, max int) (int, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) AppendUpvote(ctx context.Context, userID, entryID string) error {
	return r.db.WithContext(ctx).Create(&models.VoteLedger{
		UserID:  userID,
		EntryID: entryID,
		Kind:    "upvote",
	}).Error
}

func (r *voteRepository) FindLiveUpvote(ctx context.Context, userID, entryID string) (*models.VoteLedger, error) {
	var row models.VoteLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_id = ? AND kind = ?", userID, entryID, "upvote").
		Order("created ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *voteRepository) DeleteLedger(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.VoteLedger{}, "id = ?", id).Error
}

func (r *voteRepository) ListByUser(ctx context.Context, userID string) ([]models.VoteLedger, error) {
	var rows []models.VoteLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created DESC").
		Find(&rows).Error
	return rows, err
}

func (r *voteRepository) CountByEntry(ctx context.Context, entryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VoteLedger{}).
		Where("entry_id = ?", entryID).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) CountUpvotesForPair(ctx context.Context, userID, entryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VoteLedger{}).
		Where("user_id = ? AND entry_id = ? AND kind = ?", userID, entryID, "upvote").
		Count(&count).Error
	return count, err
}

func (r *voteRepository) FindDailyRecord(ctx context.Context, userID, entryID, date string, direction models.Direction) (*models.DailyVoteRecord, error) {
	var rec models.DailyVoteRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_id = ? AND date = ? AND direction = ?",
			userID, entryID, date, direction).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *voteRepository) CreateDailyRecord(ctx context.Context, rec *models.DailyVoteRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *voteRepository) IncrementReward(ctx context.Context, recordID string, max int) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.DailyVoteRecord{}).
		Where("id = ? AND reward_count < ?", recordID, max).
		UpdateColumns(map[string]interface{}{
			"reward_count": gorm.Expr("reward_count + 1"),
			"updated":      time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var rec models.DailyVoteRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", recordID).Error; err != nil {
		return 0, err
	}
	return rec.RewardCount, nil
}
