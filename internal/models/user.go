package models

import (
	"time"
)

// User represents a member of the social graph. The engines only use ID.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"unique;not null" json:"email"`
	Login     string     `gorm:"unique;not null" json:"login"`
	Name      string     `json:"name"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
