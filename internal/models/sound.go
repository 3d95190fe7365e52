package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actions a custom sound can be bound to.
const (
	SoundActionVote     = "vote"
	SoundActionDownvote = "downvote"
)

/** --------------------ENTITIES-------------------- */

// UserSound binds one uploaded audio clip to one action for one user. Casting
// that action plays the bound clip on the client.
type UserSound struct {
	ID      string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string    `gorm:"not null;uniqueIndex:uk_user_sound,priority:1" json:"userId"`
	Action  string    `gorm:"not null;uniqueIndex:uk_user_sound,priority:2" json:"action"`
	Name    string    `json:"name"`
	FileURL string    `gorm:"not null" json:"fileUrl"`
	Created time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
}

func (s *UserSound) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
