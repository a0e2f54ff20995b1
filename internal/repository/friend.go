package repository

import (
	"context"
	"errors"

	"cinesocial/internal/models"

	"gorm.io/gorm"
)

// FriendRepository stores friendship edges. Storage keeps one row per unordered pair;
// the methods expose the directed view: from -> to exists when from requested it or
// the pair is confirmed.
type FriendRepository interface {
	// GetStatus returns the status of the directed edge from -> to, or false when absent.
	GetStatus(ctx context.Context, from, to uint) (models.FriendshipStatus, bool, error)
	// Upsert sets the edge from -> to. A new pair records from as the requester.
	Upsert(ctx context.Context, from, to uint, status models.FriendshipStatus) error
	// DeleteBothDirections removes any edge between a and b.
	DeleteBothDirections(ctx context.Context, a, b uint) error
	// SuccessorsOf returns every user to which userID has an edge, ascending.
	SuccessorsOf(ctx context.Context, userID uint) ([]uint, error)
	WithinTx(ctx context.Context, fn func(repo FriendRepository) error) error
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) WithinTx(ctx context.Context, fn func(repo FriendRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&friendRepository{db: tx})
	})
}

func (r *friendRepository) pair(ctx context.Context, a, b uint) (*models.Friendship, error) {
	low, high := models.PairKey(a, b)
	var friendship models.Friendship
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetStatus(ctx context.Context, from, to uint) (models.FriendshipStatus, bool, error) {
	friendship, err := r.pair(ctx, from, to)
	if err != nil || friendship == nil {
		return "", false, err
	}
	if !friendship.VisibleFrom(from) {
		return "", false, nil
	}
	return friendship.Status, true, nil
}

func (r *friendRepository) Upsert(ctx context.Context, from, to uint, status models.FriendshipStatus) error {
	friendship, err := r.pair(ctx, from, to)
	if err != nil {
		return err
	}

	if friendship == nil {
		low, high := models.PairKey(from, to)
		friendship = &models.Friendship{
			UserLowID:   low,
			UserHighID:  high,
			RequesterID: from,
			Status:      status,
		}
		if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Friendship was created concurrently")
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", friendship.UserLowID, friendship.UserHighID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) DeleteBothDirections(ctx context.Context, a, b uint) error {
	low, high := models.PairKey(a, b)
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.Friendship{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) SuccessorsOf(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND (requester_id = ? OR status = ?)",
			userID, userID, userID, models.FriendshipStatusConfirmed).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Other(userID))
	}
	return sortIDs(ids), nil
}
