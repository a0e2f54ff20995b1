package models

import (
	"time"
)

// FriendshipStatus represents the status of a friendship.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a request not yet reciprocated.
	FriendshipStatusPending FriendshipStatus = "PENDING"
	// FriendshipStatusConfirmed indicates both users requested each other.
	FriendshipStatusConfirmed FriendshipStatus = "CONFIRMED"
)

// Friendship is stored once per unordered pair of users.
// UserLowID < UserHighID always; RequesterID records who asked first.
type Friendship struct {
	UserLowID   uint             `gorm:"primaryKey;autoIncrement:false" json:"user_low_id"`
	UserHighID  uint             `gorm:"primaryKey;autoIncrement:false;index" json:"user_high_id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// PairKey orders two user ids into the (low, high) key of their friendship row.
func PairKey(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the member of the pair that is not userID.
func (f *Friendship) Other(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

// VisibleFrom reports whether the directed edge from -> other exists.
// The requester always sees the edge; a confirmed pair is visible both ways.
func (f *Friendship) VisibleFrom(from uint) bool {
	return f.RequesterID == from || f.Status == FriendshipStatusConfirmed
}
