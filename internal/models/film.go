package models

import (
	"time"
)

// Genre is a reference row attached to films through film_genres.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

// Film is the payload ranked and recommended by the engagement engine.
type Film struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"size:200" json:"description"`
	ReleaseDate time.Time `gorm:"not null;index" json:"release_date"`
	Duration    int       `gorm:"not null" json:"duration"`
	Genres      []Genre   `gorm:"many2many:film_genres" json:"genres"`
	// LikesCount is not persisted; filled by ranking queries
	LikesCount int       `gorm:"-" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
