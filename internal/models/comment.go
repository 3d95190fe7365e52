package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment status values.
const (
	CommentStatusNormal  = 0
	CommentStatusDeleted = 1
)

// AnonymousName is what every commenter is displayed as. The board is
// deliberately anonymous; real names never leave the users table.
const AnonymousName = "Anonymous"

/** --------------------ENTITIES-------------------- */

// Comment is a node of the per-entry comment tree. Top-level comments have a
// nil ParentID; replies carry both their direct parent and the root of the
// thread so a whole thread can be fetched in one query.
type Comment struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	EntryID       string    `gorm:"not null;index" json:"entryId"`
	Content       string    `gorm:"not null" json:"content"`
	CreatorID     string    `gorm:"not null;index" json:"creatorId"`
	CreatorAvatar string    `json:"creatorAvatar"`
	ParentID      *string   `gorm:"index" json:"parentId"`
	RootID        *string   `gorm:"index" json:"rootId"`
	ReplyToUserID string    `json:"replyToUserId"`
	Likes         int       `gorm:"not null;default:0" json:"likes"`
	Status        int       `gorm:"not null;default:0" json:"status"`
	Created       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
	Updated       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CommentLike is one user's like on one comment. Unique per pair; liking again
// toggles the like off.
type CommentLike struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CommentID string    `gorm:"not null;uniqueIndex:uk_comment_like,priority:1" json:"commentId"`
	UserID    string    `gorm:"not null;uniqueIndex:uk_comment_like,priority:2" json:"userId"`
	Created   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

/** -------------------- DTOs -------------------- */

type AddCommentRequest struct {
	EntryID string `json:"entryId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type ReplyCommentRequest struct {
	EntryID  string `json:"entryId" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId" binding:"required"`
}

// CommentView is a comment as rendered to clients: anonymous display name,
// inlined leading replies for top-level comments.
type CommentView struct {
	ID            string        `json:"id"`
	EntryID       string        `json:"entryId"`
	Content       string        `json:"content"`
	CreatorName   string        `json:"creatorName"`
	CreatorAvatar string        `json:"creatorAvatar"`
	ReplyToName   string        `json:"replyToName,omitempty"`
	Likes         int           `json:"likes"`
	Created       time.Time     `json:"created"`
	Replies       []CommentView `json:"replies,omitempty"`
	ReplyCount    int64         `json:"replyCount,omitempty"`
}

type CommentPage struct {
	Comments []CommentView `json:"comments"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
