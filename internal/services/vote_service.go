package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// Custom errors
var (
	ErrInvalidArgument  = errors.New("entry id is required")
	ErrInvalidDirection = errors.New("unknown vote direction")
	ErrUserNotFound     = errors.New("user not found")
	ErrEntryNotFound    = errors.New("entry not found")
)

// VoteNotifier is the best-effort side channel invoked after a granted
// action. Implementations must return promptly and must never let a failure
// reach the vote path.
type VoteNotifier interface {
	VoteCast(entryID, voterID string, direction models.Direction)
}

// VoteEventPublisher receives the compact event stream of granted actions.
type VoteEventPublisher interface {
	Publish(ctx context.Context, evt models.VoteEvent) error
}

// RankingInvalidator drops the cached ranking board after the aggregate moves.
type RankingInvalidator interface {
	InvalidateRanking(ctx context.Context) error
}

type VoteService interface {
	CastVote(ctx context.Context, userID, entryID string, direction models.Direction) (VoteOutcome, error)
	RedeemShareReward(ctx context.Context, userID, entryID string, direction models.Direction) (VoteOutcome, error)
	TodayStatus(ctx context.Context, userID, entryID string) (*models.TodayVoteStatus, error)
	UserVotes(ctx context.Context, userID string) ([]models.UserVote, error)
	VoteSummary(ctx context.Context, entryID string) (*models.VoteSummary, error)
	// Wait blocks until detached side effects of granted actions (event
	// publish, cache invalidation) have finished. Call on shutdown.
	Wait()
}

type voteService struct {
	db       *gorm.DB
	users    postgres.UserRepository
	entries  postgres.EntryRepository
	votes    postgres.VoteRepository
	notifier VoteNotifier
	events   VoteEventPublisher
	ranking  RankingInvalidator
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewVoteService(db *gorm.DB, notifier VoteNotifier, events VoteEventPublisher, ranking RankingInvalidator) VoteService {
	return &voteService{
		db:       db,
		users:    postgres.NewUserRepository(db),
		entries:  postgres.NewEntryRepository(db),
		votes:    postgres.NewVoteRepository(db),
		notifier: notifier,
		events:   events,
		ranking:  ranking,
		now:      time.Now,
	}
}

// CastVote is the free once-per-day action. The daily record lookup is the
// idempotence boundary: once a record exists for (user, entry, today,
// direction), repeated calls return NeedsShare and touch nothing.
func (s *voteService) CastVote(ctx context.Context, userID, entryID string, direction models.Direction) (VoteOutcome, error) {
	if entryID == "" {
		return nil, ErrInvalidArgument
	}
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := models.DayKey(s.now())

	rec, err := s.votes.FindDailyRecord(ctx, user.ID, entryID, today, direction)
	if err == nil {
		return NeedsShare{RewardCount: rec.RewardCount}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Apply the mutation and create the daily record in one transaction so a
	// failed record write cannot leave a stray increment behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyDirectionalVote(ctx, tx, user.ID, entryID, direction); err != nil {
			return err
		}
		return postgres.NewVoteRepository(tx).CreateDailyRecord(ctx, &models.DailyVoteRecord{
			UserID:      user.ID,
			EntryID:     entryID,
			Date:        today,
			Direction:   direction,
			HasVoted:    true,
			RewardCount: 1,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the first-vote race; the winning caller applied the vote
			// and the rollback discarded ours.
			if rec, ferr := s.votes.FindDailyRecord(ctx, user.ID, entryID, today, direction); ferr == nil {
				return NeedsShare{RewardCount: rec.RewardCount}, nil
			}
			return NeedsShare{RewardCount: 1}, nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	s.afterGrant(user.ID, entryID, direction, 1)
	return Granted{RewardCount: 1}, nil
}

// RedeemShareReward climbs the reward ladder. Only valid after the base daily
// action; capped at models.MaxDailyRewards per record.
func (s *voteService) RedeemShareReward(ctx context.Context, userID, entryID string, direction models.Direction) (VoteOutcome, error) {
	if entryID == "" {
		return nil, ErrInvalidArgument
	}
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := models.DayKey(s.now())

	rec, err := s.votes.FindDailyRecord(ctx, user.ID, entryID, today, direction)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotYetVoted{}, nil
		}
		return nil, err
	}
	if rec.RewardCount >= models.MaxDailyRewards {
		return RewardLimitReached{}, nil
	}

	var newCount int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyDirectionalVote(ctx, tx, user.ID, entryID, direction); err != nil {
			return err
		}
		n, err := postgres.NewVoteRepository(tx).IncrementReward(ctx, rec.ID, models.MaxDailyRewards)
		if err != nil {
			return err
		}
		newCount = n
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The guarded increment matched no row: a concurrent redemption
			// already filled the ladder.
			return RewardLimitReached{}, nil
		}
		return nil, err
	}

	s.afterGrant(user.ID, entryID, direction, newCount)
	return Granted{RewardCount: newCount}, nil
}

func (s *voteService) TodayStatus(ctx context.Context, userID, entryID string) (*models.TodayVoteStatus, error) {
	if entryID == "" {
		return nil, ErrInvalidArgument
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := models.DayKey(s.now())
	status := &models.TodayVoteStatus{}

	for _, d := range []models.Direction{models.DirectionUp, models.DirectionDown} {
		rec, err := s.votes.FindDailyRecord(ctx, user.ID, entryID, today, d)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		ds := models.DirectionStatus{HasVoted: rec.HasVoted, RewardCount: rec.RewardCount}
		if d == models.DirectionUp {
			status.UpVote = ds
		} else {
			status.DownVote = ds
		}
	}
	return status, nil
}

func (s *voteService) UserVotes(ctx context.Context, userID string) ([]models.UserVote, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rows, err := s.votes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	votes := make([]models.UserVote, 0, len(rows))
	for _, row := range rows {
		v := models.UserVote{
			ID:          row.ID,
			EntryID:     row.EntryID,
			EntryName:   "unknown entry",
			EntryAvatar: "/images/placeholder-user.jpg",
			Kind:        row.Kind,
			Date:        row.Created,
		}
		if entry, err := s.entries.FindByID(ctx, row.EntryID); err == nil {
			v.EntryName = entry.Name
			v.EntryAvatar = entry.AvatarURL
			v.CurrentVotes = entry.Votes
		}
		votes = append(votes, v)
	}
	return votes, nil
}

func (s *voteService) VoteSummary(ctx context.Context, entryID string) (*models.VoteSummary, error) {
	if entryID == "" {
		return nil, ErrInvalidArgument
	}
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	total, err := s.votes.CountByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	return &models.VoteSummary{
		EntryID:           entry.ID,
		Name:              entry.Name,
		CurrentVotes:      entry.Votes,
		TotalTransactions: total,
		Upvotes:           total,
	}, nil
}

// applyDirectionalVote executes the shared mutation for both the free action
// and reward redemptions. Up appends a ledger row and increments the
// aggregate; down retracts at most one prior upvote row and decrements the
// aggregate whether or not one existed (the total may go negative; that is
// the unpopularity signal, not a bug).
func applyDirectionalVote(ctx context.Context, tx *gorm.DB, userID, entryID string, direction models.Direction) error {
	votes := postgres.NewVoteRepository(tx)
	entries := postgres.NewEntryRepository(tx)

	if direction == models.DirectionUp {
		if err := votes.AppendUpvote(ctx, userID, entryID); err != nil {
			return err
		}
		return entries.ApplyVote(ctx, entryID, 1, models.TrendUp)
	}

	row, err := votes.FindLiveUpvote(ctx, userID, entryID)
	if err == nil {
		if err := votes.DeleteLedger(ctx, row.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return entries.ApplyVote(ctx, entryID, -1, models.TrendDown)
}

// afterGrant fans out the side effects of a granted action. None of them may
// block or fail the vote call: the notifier is async by contract, the event
// publish and cache invalidation run detached with their own deadline.
func (s *voteService) afterGrant(userID, entryID string, direction models.Direction, rewardCount int) {
	if s.notifier != nil {
		s.notifier.VoteCast(entryID, userID, direction)
	}

	occurredAt := s.now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.events != nil {
			err := s.events.Publish(ctx, models.VoteEvent{
				UserID:      userID,
				EntryID:     entryID,
				Direction:   direction,
				RewardCount: rewardCount,
				OccurredAt:  occurredAt,
			})
			if err != nil {
				slog.Warn("vote event publish failed", "entry", entryID, "error", err)
			}
		}
		if s.ranking != nil {
			if err := s.ranking.InvalidateRanking(ctx); err != nil {
				slog.Warn("ranking cache invalidation failed", "error", err)
			}
		}
	}()
}

func (s *voteService) Wait() {
	s.wg.Wait()
}
