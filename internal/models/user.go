package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// User represents a registered account on the ranking app.
type User struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Provider  string         `gorm:"not null" json:"provider"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Name      string         `gorm:"not null" json:"name"`
	Password  string         `gorm:"nullable" json:"-"`
	Avatar    string         `gorm:"nullable" json:"avatar"`
	Created   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

/** -------------------- DTOs -------------------- */

// Request
type RegisterRequest struct {
	Provider string `json:"provider" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Response
type UserResponse struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Avatar  string    `json:"avatar"`
	Created time.Time `json:"created"`
}
