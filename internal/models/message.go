package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types.
const (
	MessageTypeVote    = "vote"
	MessageTypeComment = "comment"
	MessageTypeReply   = "reply"
	MessageTypeSystem  = "system"
)

/** --------------------ENTITIES-------------------- */

// Message is an in-app notification addressed to one user.
type Message struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	ReceiverID   string     `gorm:"not null;index" json:"receiverId"`
	SenderID     string     `gorm:"index" json:"senderId"`
	SenderName   string     `json:"senderName"`
	SenderAvatar string     `json:"senderAvatar"`
	Type         string     `gorm:"not null" json:"type"`
	Content      string     `gorm:"not null" json:"content"`
	EntryID      string     `gorm:"index" json:"entryId"`
	EntryTitle   string     `json:"entryTitle"`
	RelatedID    string     `json:"relatedId"`
	Read         bool       `gorm:"not null;default:false" json:"read"`
	ReadTime     *time.Time `json:"readTime"`
	Created      time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

/** -------------------- DTOs -------------------- */

// MessageCounts carries the per-type totals shown on the message tabs.
type MessageCounts struct {
	All     int64 `json:"all"`
	Comment int64 `json:"comment"`
	Vote    int64 `json:"vote"`
	System  int64 `json:"system"`
}

type MessageList struct {
	Messages    []Message     `json:"messages"`
	UnreadCount int           `json:"unreadCount"`
	Counts      MessageCounts `json:"counts"`
}

// PushPayload is handed to the external push channel. Content is truncated to
// the template's 20-rune limit before it gets here.
type PushPayload struct {
	ReceiverID string `json:"receiverId"`
	TemplateID string `json:"templateId"`
	Content    string `json:"content"`
	PagePath   string `json:"pagePath"`
	SentAt     string `json:"sentAt"`
}
