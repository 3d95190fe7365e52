package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement types.
const (
	AchievementPositive = "positive"
	AchievementNegative = "negative"
	AchievementNeutral  = "neutral"
)

/** --------------------ENTITIES-------------------- */

// Achievement is a short free-text deed posted on a user's profile.
type Achievement struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"not null;index" json:"userId"`
	Content       string    `gorm:"not null" json:"content"`
	Date          string    `json:"date"`
	Type          string    `gorm:"not null;default:neutral" json:"type"`
	Location      string    `json:"location"`
	CreatorID     string    `gorm:"not null" json:"creatorId"`
	CreatorAvatar string    `json:"creatorAvatar"`
	Created       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
	Updated       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Type == "" {
		a.Type = AchievementNeutral
	}
	return nil
}

/** -------------------- DTOs -------------------- */

type AddAchievementRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// AchievementView forces the anonymous display name like the comment board.
type AchievementView struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Content       string    `json:"content"`
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	Location      string    `json:"location"`
	CreatorName   string    `json:"creatorName"`
	CreatorAvatar string    `json:"creatorAvatar"`
	Created       time.Time `json:"created"`
}
