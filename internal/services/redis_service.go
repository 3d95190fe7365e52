package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"musteat-service/internal/database"
	"musteat-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	rankingCacheKey = "ranking:board"
	rankingTTL      = 30 * time.Second
)

// RedisService covers the two cache concerns of the service: the ranked-board
// snapshot and per-client rate-limit counters.
type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

// =============================================================================
// Ranking board cache
// =============================================================================

// GetRanking returns the cached board, or redis.Nil when nothing is cached.
func (r *RedisService) GetRanking(ctx context.Context) ([]models.RankedEntry, error) {
	data, err := r.client.GetClient().Get(ctx, rankingCacheKey).Bytes()
	if err != nil {
		return nil, err
	}
	var board []models.RankedEntry
	if err := json.Unmarshal(data, &board); err != nil {
		// A corrupt cache entry behaves like a miss.
		slog.Warn("ranking cache entry corrupt, dropping", "error", err)
		r.client.GetClient().Del(ctx, rankingCacheKey)
		return nil, redis.Nil
	}
	return board, nil
}

func (r *RedisService) SetRanking(ctx context.Context, board []models.RankedEntry) error {
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return r.client.GetClient().Set(ctx, rankingCacheKey, data, rankingTTL).Err()
}

// InvalidateRanking drops the cached board after any vote mutation.
func (r *RedisService) InvalidateRanking(ctx context.Context) error {
	return r.client.GetClient().Del(ctx, rankingCacheKey).Err()
}

// =============================================================================
// Rate limiting
// =============================================================================

// IncrementRequestCount bumps the rolling counter for one client key and
// returns the count within the current window.
func (r *RedisService) IncrementRequestCount(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.GetClient().Pipeline()
	counterKey := fmt.Sprintf("ratelimit:%s", key)

	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// CheckRateLimit reports whether the caller is still under its limit for the
// current window.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.IncrementRequestCount(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
