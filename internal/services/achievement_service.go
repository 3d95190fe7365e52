package services

import (
	"context"
	"errors"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrNotAchievementOwner = errors.New("not the achievement owner")
)

type AchievementService interface {
	Add(ctx context.Context, creatorID string, req *models.AddAchievementRequest) (*models.Achievement, error)
	ListByUser(ctx context.Context, userID string) ([]models.AchievementView, error)
	Delete(ctx context.Context, userID, achievementID string) error
}

type achievementService struct {
	achievements postgres.AchievementRepository
	users        postgres.UserRepository
}

func NewAchievementService(achievements postgres.AchievementRepository, users postgres.UserRepository) AchievementService {
	return &achievementService{achievements: achievements, users: users}
}

func (s *achievementService) Add(ctx context.Context, creatorID string, req *models.AddAchievementRequest) (*models.Achievement, error) {
	if creatorID == "" || req == nil || req.UserID == "" || req.Content == "" {
		return nil, ErrInvalidArgument
	}
	achievementType := req.Type
	switch achievementType {
	case models.AchievementPositive, models.AchievementNegative, models.AchievementNeutral:
	case "":
		achievementType = models.AchievementNeutral
	default:
		return nil, ErrInvalidArgument
	}

	avatar := ""
	if creator, err := s.users.FindByID(ctx, creatorID); err == nil {
		avatar = creator.Avatar
	}

	achievement := &models.Achievement{
		UserID:        req.UserID,
		Content:       req.Content,
		Date:          req.Date,
		Type:          achievementType,
		Location:      req.Location,
		CreatorID:     creatorID,
		CreatorAvatar: avatar,
	}
	if err := s.achievements.Create(ctx, achievement); err != nil {
		return nil, err
	}
	return achievement, nil
}

func (s *achievementService) ListByUser(ctx context.Context, userID string) ([]models.AchievementView, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	achievements, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.AchievementView, 0, len(achievements))
	for _, a := range achievements {
		views = append(views, models.AchievementView{
			ID:            a.ID,
			UserID:        a.UserID,
			Content:       a.Content,
			Date:          a.Date,
			Type:          a.Type,
			Location:      a.Location,
			CreatorName:   models.AnonymousName,
			CreatorAvatar: a.CreatorAvatar,
			Created:       a.Created,
		})
	}
	return views, nil
}

// Delete removes an achievement. Both the profile owner and the original
// poster may remove it.
func (s *achievementService) Delete(ctx context.Context, userID, achievementID string) error {
	if userID == "" || achievementID == "" {
		return ErrInvalidArgument
	}
	achievement, err := s.achievements.FindByID(ctx, achievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAchievementNotFound
		}
		return err
	}
	if achievement.UserID != userID && achievement.CreatorID != userID {
		return ErrNotAchievementOwner
	}
	return s.achievements.Delete(ctx, achievementID)
}
