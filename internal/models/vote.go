package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Direction is the polarity of a vote action.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the two known polarities.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// MaxDailyRewards caps the share-unlocked reward ladder per
// (user, entry, day, direction).
const MaxDailyRewards = 5

// DayKey formats t as the calendar-day key used to scope daily vote records.
// The server clock is authoritative; clients do not negotiate timezones.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

/** --------------------ENTITIES-------------------- */

// VoteLedger is one row per executed upvote. Downvotes do not append rows;
// they retract the matching upvote row if one exists.
type VoteLedger struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;index:idx_ledger_user_entry,priority:1" json:"userId"`
	EntryID   string    `gorm:"not null;index:idx_ledger_user_entry,priority:2" json:"entryId"`
	Kind      string    `gorm:"not null;default:upvote" json:"kind"`
	Created   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
}

func (v *VoteLedger) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// DailyVoteRecord tracks one (user, entry, day, direction). The composite
// unique index is what makes the concurrent first-vote race benign: the losing
// writer hits a duplicate key and the whole transaction rolls back.
// RewardCount is monotonically non-decreasing within a day, bounded by
// MaxDailyRewards.
type DailyVoteRecord struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:uk_daily_vote,priority:1" json:"userId"`
	EntryID     string    `gorm:"not null;uniqueIndex:uk_daily_vote,priority:2" json:"entryId"`
	Date        string    `gorm:"not null;uniqueIndex:uk_daily_vote,priority:3" json:"date"`
	Direction   Direction `gorm:"not null;uniqueIndex:uk_daily_vote,priority:4" json:"direction"`
	HasVoted    bool      `gorm:"not null;default:true" json:"hasVoted"`
	RewardCount int       `gorm:"not null;default:0" json:"rewardCount"`
	Created     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
	Updated     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated"`
}

func (d *DailyVoteRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

/** -------------------- DTOs -------------------- */

type VoteRequest struct {
	EntryID string `json:"entryId" binding:"required"`
}

type ShareRewardRequest struct {
	EntryID   string    `json:"entryId" binding:"required"`
	Direction Direction `json:"direction" binding:"required"`
}

// DirectionStatus is half of the per-day status pair shown on the detail page.
type DirectionStatus struct {
	HasVoted    bool `json:"hasVoted"`
	RewardCount int  `json:"rewardCount"`
}

type TodayVoteStatus struct {
	UpVote   DirectionStatus `json:"upVote"`
	DownVote DirectionStatus `json:"downVote"`
}

// UserVote is one row of a user's vote history joined with entry info.
type UserVote struct {
	ID           string    `json:"id"`
	EntryID      string    `json:"entryId"`
	EntryName    string    `json:"entryName"`
	EntryAvatar  string    `json:"entryAvatar"`
	CurrentVotes int       `json:"currentVotes"`
	Kind         string    `json:"kind"`
	Date         time.Time `json:"date"`
}

// VoteSummary aggregates ledger statistics for one entry.
type VoteSummary struct {
	EntryID           string `json:"entryId"`
	Name              string `json:"name"`
	CurrentVotes      int    `json:"currentVotes"`
	TotalTransactions int64  `json:"totalTransactions"`
	Upvotes           int64  `json:"upvotes"`
}

// VoteEvent is the compact record published to the vote event stream after a
// granted action.
type VoteEvent struct {
	UserID      string    `json:"userId"`
	EntryID     string    `json:"entryId"`
	Direction   Direction `json:"direction"`
	RewardCount int       `json:"rewardCount"`
	OccurredAt  time.Time `json:"occurredAt"`
}
