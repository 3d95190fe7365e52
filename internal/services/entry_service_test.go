package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRankingCache struct {
	mu     sync.Mutex
	board  []models.RankedEntry
	cached bool
	gets   int
	sets   int
	getErr error
}

func (f *fakeRankingCache) GetRanking(_ context.Context) ([]models.RankedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.cached {
		return nil, redis.Nil
	}
	return f.board, nil
}

func (f *fakeRankingCache) SetRanking(_ context.Context, board []models.RankedEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.board = board
	f.cached = true
	return nil
}

func TestEntryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(postgres.NewEntryRepository(db), nil)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	entry, err := svc.Create(ctx, user.ID, &models.CreateEntryRequest{Name: "banh mi cart", Location: "district 1"})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.TrendStable, entry.Trend)
	assert.Equal(t, 0, entry.Votes)

	got, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "banh mi cart", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRankingOrdersByVotes(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(postgres.NewEntryRepository(db), nil)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	low := seedEntry(t, db, user.ID, "low")
	high := seedEntry(t, db, user.ID, "high")
	require.NoError(t, db.Model(&models.Entry{}).Where("id = ?", high.ID).Update("votes", 9).Error)
	require.NoError(t, db.Model(&models.Entry{}).Where("id = ?", low.ID).Update("votes", -2).Error)

	board, err := svc.Ranking(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "high", board[0].Name)
	assert.Equal(t, "low", board[1].Name)
	assert.Equal(t, -2, board[1].Votes)
}

func TestRankingCacheAside(t *testing.T) {
	db := newTestDB(t)
	cache := &fakeRankingCache{}
	svc := NewEntryService(postgres.NewEntryRepository(db), cache)
	user := seedUser(t, db, "alice")
	seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	// Miss populates the cache.
	board, err := svc.Ranking(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 1, cache.sets)

	// Hit serves the cached copy without touching the database.
	seedEntry(t, db, user.ID, "second place")
	board, err = svc.Ranking(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, board, 1, "cached board should not see the new entry")

	// Deeper pages bypass the cache.
	board, err = svc.Ranking(ctx, 10, 10)
	require.NoError(t, err)
	assert.Len(t, board, 0)
	assert.Equal(t, 1, cache.sets)
}

func TestRankingSurvivesCacheFailure(t *testing.T) {
	db := newTestDB(t)
	cache := &fakeRankingCache{getErr: errors.New("redis away")}
	svc := NewEntryService(postgres.NewEntryRepository(db), cache)
	user := seedUser(t, db, "alice")
	seedEntry(t, db, user.ID, "pho place")

	board, err := svc.Ranking(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}
