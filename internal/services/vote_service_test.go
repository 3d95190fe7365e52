package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"musteat-service/internal/database"
	"musteat-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// SQLite cannot interleave writers; one connection keeps the concurrent
	// tests deterministic without changing what they exercise.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Provider: "test",
		Email:    name + "@example.com",
		Name:     name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedEntry(t *testing.T, db *gorm.DB, creatorID, name string) *models.Entry {
	t.Helper()
	entry := &models.Entry{Name: name, CreatorID: creatorID}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) VoteCast(entryID, voterID string, direction models.Direction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%s:%s", entryID, voterID, direction))
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.VoteEvent
}

func (f *fakePublisher) Publish(_ context.Context, evt models.VoteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	drops int
}

func (f *fakeInvalidator) InvalidateRanking(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drops++
	return nil
}

func newTestVoteService(t *testing.T, db *gorm.DB) (*voteService, *fakeNotifier, *fakePublisher, *fakeInvalidator) {
	t.Helper()
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	ranking := &fakeInvalidator{}
	svc := NewVoteService(db, notifier, events, ranking).(*voteService)
	return svc, notifier, events, ranking
}

func entryVotes(t *testing.T, db *gorm.DB, entryID string) (int, string) {
	t.Helper()
	var entry models.Entry
	require.NoError(t, db.First(&entry, "id = ?", entryID).Error)
	return entry.Votes, entry.Trend
}

func TestCastVoteFirstTimeGrants(t *testing.T) {
	db := newTestDB(t)
	svc, notifier, events, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")

	outcome, err := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, Granted{RewardCount: 1}, outcome)

	votes, trend := entryVotes(t, db, entry.ID)
	assert.Equal(t, 1, votes)
	assert.Equal(t, models.TrendUp, trend)

	var ledger []models.VoteLedger
	require.NoError(t, db.Find(&ledger, "user_id = ? AND entry_id = ?", user.ID, entry.ID).Error)
	assert.Len(t, ledger, 1)

	var rec models.DailyVoteRecord
	require.NoError(t, db.First(&rec, "user_id = ? AND entry_id = ?", user.ID, entry.ID).Error)
	assert.True(t, rec.HasVoted)
	assert.Equal(t, 1, rec.RewardCount)
	assert.Equal(t, models.DirectionUp, rec.Direction)

	assert.Equal(t, 1, notifier.count())
	require.Eventually(t, func() bool { return events.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCastVoteRepeatSameDayNeedsShare(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")

	_, err := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	outcome, err := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, NeedsShare{RewardCount: 1}, outcome)

	// The repeat call must not touch the aggregate.
	votes, _ := entryVotes(t, db, entry.ID)
	assert.Equal(t, 1, votes)
}

func TestRedeemShareRewardLadder(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	_, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	for want := 2; want <= models.MaxDailyRewards; want++ {
		outcome, err := svc.RedeemShareReward(ctx, user.ID, entry.ID, models.DirectionUp)
		require.NoError(t, err)
		require.Equal(t, Granted{RewardCount: want}, outcome, "redemption %d", want-1)
	}

	votes, _ := entryVotes(t, db, entry.ID)
	assert.Equal(t, models.MaxDailyRewards, votes)

	outcome, err := svc.RedeemShareReward(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, RewardLimitReached{}, outcome)

	// The refused redemption leaves everything as it was.
	votes, _ = entryVotes(t, db, entry.ID)
	assert.Equal(t, models.MaxDailyRewards, votes)
}

func TestRedeemBeforeVoting(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")

	outcome, err := svc.RedeemShareReward(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, NotYetVoted{}, outcome)
}

func TestDownvoteRetractsLiveUpvote(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	_, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	outcome, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, Granted{RewardCount: 1}, outcome)

	votes, trend := entryVotes(t, db, entry.ID)
	assert.Equal(t, 0, votes)
	assert.Equal(t, models.TrendDown, trend)

	var count int64
	require.NoError(t, db.Model(&models.VoteLedger{}).
		Where("user_id = ? AND entry_id = ?", user.ID, entry.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count, "the upvote row should be retracted")
}

func TestDownvoteWithoutUpvoteGoesNegative(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "bob")
	entry := seedEntry(t, db, user.ID, "pho place")

	outcome, err := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, Granted{RewardCount: 1}, outcome)

	votes, trend := entryVotes(t, db, entry.ID)
	assert.Equal(t, -1, votes)
	assert.Equal(t, models.TrendDown, trend)
}

func TestCastVoteValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	t.Run("EmptyEntry", func(t *testing.T) {
		_, err := svc.CastVote(ctx, user.ID, "", models.DirectionUp)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("BadDirection", func(t *testing.T) {
		_, err := svc.CastVote(ctx, user.ID, entry.ID, models.Direction("sideways"))
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := svc.CastVote(ctx, "nobody", entry.ID, models.DirectionUp)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("UnknownEntry", func(t *testing.T) {
		_, err := svc.CastVote(ctx, user.ID, "nothing", models.DirectionUp)
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})
}

func TestCastVoteUnknownEntryLeavesNoRecord(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")

	_, err := svc.CastVote(context.Background(), user.ID, "missing", models.DirectionUp)
	require.ErrorIs(t, err, ErrEntryNotFound)

	// The failed transaction must roll back the daily record too.
	var count int64
	require.NoError(t, db.Model(&models.DailyVoteRecord{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDirectionsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	_, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	// The down direction keeps its own daily record and free action.
	outcome, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, Granted{RewardCount: 1}, outcome)

	outcome, err = svc.CastVote(ctx, user.ID, entry.ID, models.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, NeedsShare{RewardCount: 1}, outcome)
}

func TestDayBoundaryResetsFreeVote(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	_, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	outcome, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, NeedsShare{RewardCount: 1}, outcome)

	// Two minutes later it is a new calendar day and a new free vote.
	svc.now = func() time.Time { return day1.Add(2 * time.Minute) }

	outcome, err = svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, Granted{RewardCount: 1}, outcome)

	votes, _ := entryVotes(t, db, entry.ID)
	assert.Equal(t, 2, votes)
}

func TestTodayStatus(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	status, err := svc.TodayStatus(ctx, user.ID, entry.ID)
	require.NoError(t, err)
	assert.False(t, status.UpVote.HasVoted)
	assert.False(t, status.DownVote.HasVoted)

	_, err = svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	_, err = svc.RedeemShareReward(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	status, err = svc.TodayStatus(ctx, user.ID, entry.ID)
	require.NoError(t, err)
	assert.True(t, status.UpVote.HasVoted)
	assert.Equal(t, 2, status.UpVote.RewardCount)
	assert.False(t, status.DownVote.HasVoted)
}

func TestUserVotesJoinsEntryInfo(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")
	ctx := context.Background()

	_, err := svc.CastVote(ctx, user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	votes, err := svc.UserVotes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, entry.ID, votes[0].EntryID)
	assert.Equal(t, "pho place", votes[0].EntryName)
	assert.Equal(t, 1, votes[0].CurrentVotes)
}

func TestVoteSummary(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	entry := seedEntry(t, db, alice.ID, "pho place")
	ctx := context.Background()

	_, err := svc.CastVote(ctx, alice.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, bob.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	summary, err := svc.VoteSummary(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CurrentVotes)
	assert.Equal(t, int64(2), summary.TotalTransactions)
	assert.Equal(t, "pho place", summary.Name)

	_, err = svc.VoteSummary(ctx, "missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestConcurrentVotersAllCounted(t *testing.T) {
	db := newTestDB(t)
	svc, _, _, _ := newTestVoteService(t, db)
	owner := seedUser(t, db, "owner")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	const voters = 8
	users := make([]*models.User, voters)
	for i := range users {
		users[i] = seedUser(t, db, fmt.Sprintf("voter%d", i))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := svc.CastVote(ctx, userID, entry.ID, models.DirectionUp)
			assert.NoError(t, err)
		}(u.ID)
	}
	wg.Wait()

	votes, _ := entryVotes(t, db, entry.ID)
	assert.Equal(t, voters, votes, "no increment may be lost under concurrency")
}

// A voter who loses the first-vote race sees the daily record's unique index
// fire inside the transaction. The whole transaction must roll back and the
// caller must get NeedsShare, exactly as if the winning call had landed first.
func TestCastVoteLosingFirstVoteRaceRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc, notifier, events, _ := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")

	// Stand in for the concurrent winner: the record insert collides.
	err := db.Callback().Create().Before("gorm:create").Register("collide_daily_record", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.DailyVoteRecord); ok {
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	})
	require.NoError(t, err)

	outcome, castErr := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, castErr)
	require.Equal(t, NeedsShare{RewardCount: 1}, outcome)

	// The loser's increment and ledger row must not survive the rollback.
	votes, _ := entryVotes(t, db, entry.ID)
	assert.Equal(t, 0, votes)

	var ledger []models.VoteLedger
	require.NoError(t, db.Find(&ledger, "user_id = ?", user.ID).Error)
	assert.Empty(t, ledger)

	// Nothing was granted, so no side effects fan out.
	assert.Equal(t, 0, notifier.count())
	svc.Wait()
	assert.Equal(t, 0, events.count())
}

func TestWaitFlushesVoteEvents(t *testing.T) {
	db := newTestDB(t)
	svc, _, events, ranking := newTestVoteService(t, db)
	user := seedUser(t, db, "alice")
	entry := seedEntry(t, db, user.ID, "pho place")

	_, err := svc.CastVote(context.Background(), user.ID, entry.ID, models.DirectionUp)
	require.NoError(t, err)

	// After Wait the detached publish and invalidation are done, no polling.
	svc.Wait()
	assert.Equal(t, 1, events.count())
	ranking.mu.Lock()
	assert.Equal(t, 1, ranking.drops)
	ranking.mu.Unlock()
}
