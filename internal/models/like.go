package models

import (
	"time"
)

// Like records that a user liked a film.
// The (UserID, FilmID) pair is the primary key, so an edge exists at most once.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FilmID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"film_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}
