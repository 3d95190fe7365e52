package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trend values for an entry's vote aggregate.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

/** --------------------ENTITIES-------------------- */

// Entry is a nominated item on the must-eat list. Votes is a signed running
// total owned by the vote engine; it can go negative and is only ever changed
// through atomic increments.
type Entry struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string         `gorm:"not null;index" json:"name"`
	Description  string         `json:"description"`
	AvatarURL    string         `json:"avatarUrl"`
	Location     string         `json:"location"`
	Votes        int            `gorm:"not null;default:0;index" json:"votes"`
	Trend        string         `gorm:"not null;default:stable" json:"trend"`
	CommentCount int            `gorm:"not null;default:0" json:"commentCount"`
	CreatorID    string         `gorm:"not null;index" json:"creatorId"`
	Created      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
	Updated      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Trend == "" {
		e.Trend = TrendStable
	}
	return nil
}

/** -------------------- DTOs -------------------- */

type CreateEntryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatarUrl"`
	Location    string `json:"location"`
}

// RankedEntry is one row of the ranking board.
type RankedEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatarUrl"`
	Votes        int       `json:"votes"`
	Trend        string    `json:"trend"`
	CommentCount int       `json:"commentCount"`
	Created      time.Time `json:"created"`
}
