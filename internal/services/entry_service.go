package services

import (
	"context"
	"errors"
	"log/slog"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RankingCache is the cache-aside layer in front of the ranked board.
// Implementations return redis.Nil on a miss.
type RankingCache interface {
	GetRanking(ctx context.Context) ([]models.RankedEntry, error)
	SetRanking(ctx context.Context, board []models.RankedEntry) error
}

type EntryService interface {
	Create(ctx context.Context, creatorID string, req *models.CreateEntryRequest) (*models.Entry, error)
	Get(ctx context.Context, entryID string) (*models.Entry, error)
	Ranking(ctx context.Context, limit, offset int) ([]models.RankedEntry, error)
}

type entryService struct {
	entries postgres.EntryRepository
	cache   RankingCache
}

func NewEntryService(entries postgres.EntryRepository, cache RankingCache) EntryService {
	return &entryService{entries: entries, cache: cache}
}

func (s *entryService) Create(ctx context.Context, creatorID string, req *models.CreateEntryRequest) (*models.Entry, error) {
	if creatorID == "" || req == nil || req.Name == "" {
		return nil, ErrInvalidArgument
	}
	entry := &models.Entry{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		Location:    req.Location,
		Trend:       models.TrendStable,
		CreatorID:   creatorID,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *entryService) Get(ctx context.Context, entryID string) (*models.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Ranking serves the board cache-first. Only the first page (offset 0, default
// page size) is cached; deeper pages always hit the database.
func (s *entryService) Ranking(ctx context.Context, limit, offset int) ([]models.RankedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	cacheable := s.cache != nil && offset == 0 && limit == 50
	if cacheable {
		board, err := s.cache.GetRanking(ctx)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, redis.Nil) {
			// Cache trouble never takes the board down.
			slog.Warn("ranking cache read failed", "error", err)
		}
	}

	entries, err := s.entries.ListRanked(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	board := make([]models.RankedEntry, 0, len(entries))
	for _, e := range entries {
		board = append(board, models.RankedEntry{
			ID:           e.ID,
			Name:         e.Name,
			AvatarURL:    e.AvatarURL,
			Votes:        e.Votes,
			Trend:        e.Trend,
			CommentCount: e.CommentCount,
			Created:      e.Created,
		})
	}

	if cacheable {
		if err := s.cache.SetRanking(ctx, board); err != nil {
			slog.Warn("ranking cache write failed", "error", err)
		}
	}
	return board, nil
}
