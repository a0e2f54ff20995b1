package models

import (
	"time"
)

// VoteKind is a user's opinion of a review.
type VoteKind string

const (
	VoteLike    VoteKind = "LIKE"
	VoteDislike VoteKind = "DISLIKE"
)

// Valid reports whether k is a known vote kind.
func (k VoteKind) Valid() bool {
	return k == VoteLike || k == VoteDislike
}

// Delta is the usefulness contribution of a vote of this kind.
func (k VoteKind) Delta() int {
	if k == VoteLike {
		return 1
	}
	return -1
}

// Review is a user's written opinion of a film.
// Useful only changes through vote transitions.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"reviewId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsPositive bool      `gorm:"not null" json:"isPositive"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	FilmID     uint      `gorm:"not null;index" json:"filmId"`
	Useful     int       `gorm:"not null;default:0" json:"useful"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewVote is the single current vote of a user on a review.
type ReviewVote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ReviewID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"review_id"`
	Kind      VoteKind  `gorm:"type:varchar(10);not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ReviewVote) TableName() string {
	return "review_votes"
}
