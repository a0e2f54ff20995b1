// Package service holds the engines that own the application's state transitions.
package service

import (
	"context"
	"errors"
	"log/slog"

	"cinesocial/internal/middleware"
	"cinesocial/internal/models"
	"cinesocial/internal/observability"
	"cinesocial/internal/repository"
)

// FriendService drives the friendship state machine over unordered user pairs:
// NONE -> PENDING(requester) -> CONFIRMED.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (s *FriendService) requireUsers(ctx context.Context, ids ...uint) error {
	for _, id := range ids {
		ok, err := s.userRepo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("User", id)
		}
	}
	return nil
}

// RequestFriendship records a request from userID to friendID and returns the resulting status.
// A request against a pending pair, from either side, confirms it. A request against a
// confirmed pair fails with a conflict and changes nothing.
func (s *FriendService) RequestFriendship(ctx context.Context, userID, friendID uint) (status models.FriendshipStatus, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.RequestFriendship",
		observability.UserAttr("user.id", userID),
		observability.UserAttr("friend.id", friendID),
	)
	defer span.EndWith(&err)

	if userID == friendID {
		return "", models.NewValidationError("Cannot send friend request to yourself")
	}
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return "", err
	}

	err = s.friendRepo.WithinTx(ctx, func(tx repository.FriendRepository) error {
		forward, hasForward, err := tx.GetStatus(ctx, userID, friendID)
		if err != nil {
			return err
		}
		backward, hasBackward, err := tx.GetStatus(ctx, friendID, userID)
		if err != nil {
			return err
		}

		switch {
		case forward == models.FriendshipStatusConfirmed || backward == models.FriendshipStatusConfirmed:
			return models.NewConflictError("Friendship is already confirmed")
		case !hasForward && !hasBackward:
			status = models.FriendshipStatusPending
			return tx.Upsert(ctx, userID, friendID, models.FriendshipStatusPending)
		case hasForward:
			status = models.FriendshipStatusConfirmed
			return tx.Upsert(ctx, userID, friendID, models.FriendshipStatusConfirmed)
		default:
			status = models.FriendshipStatusConfirmed
			return tx.Upsert(ctx, friendID, userID, models.FriendshipStatusConfirmed)
		}
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			observability.FriendshipTransitions.WithLabelValues("conflict").Inc()
		}
		return "", err
	}

	observability.FriendshipTransitions.WithLabelValues(string(status)).Inc()
	middleware.Logger.InfoContext(ctx, "friendship requested",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("friend_id", uint64(friendID)),
		slog.String("status", string(status)),
	)
	return status, nil
}

// RemoveFriendship deletes the relation between the two users in both directions.
// Removing an absent relation is not an error.
func (s *FriendService) RemoveFriendship(ctx context.Context, userID, friendID uint) (err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.RemoveFriendship",
		observability.UserAttr("user.id", userID),
		observability.UserAttr("friend.id", friendID),
	)
	defer span.EndWith(&err)

	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.friendRepo.DeleteBothDirections(ctx, userID, friendID); err != nil {
		return err
	}

	observability.FriendshipTransitions.WithLabelValues("removed").Inc()
	middleware.Logger.InfoContext(ctx, "friendship removed",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("friend_id", uint64(friendID)),
	)
	return nil
}

// ListFriends returns every user userID has an edge to, ascending. Pending requests sent by
// userID are included; callers needing confirmed friends only must filter.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) (ids []uint, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.ListFriends", observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)

	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}
	return s.friendRepo.SuccessorsOf(ctx, userID)
}

// ListFriendUsers is ListFriends hydrated to user records.
func (s *FriendService) ListFriendUsers(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := s.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByIDs(ctx, ids)
}

// CommonFriends returns the users both userID and otherID have an edge to, ascending.
func (s *FriendService) CommonFriends(ctx context.Context, userID, otherID uint) (ids []uint, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.CommonFriends",
		observability.UserAttr("user.id", userID),
		observability.UserAttr("other.id", otherID),
	)
	defer span.EndWith(&err)

	if err := s.requireUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}

	mine, err := s.friendRepo.SuccessorsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := s.friendRepo.SuccessorsOf(ctx, otherID)
	if err != nil {
		return nil, err
	}
	return intersect(mine, theirs), nil
}

// CommonFriendUsers is CommonFriends hydrated to user records.
func (s *FriendService) CommonFriendUsers(ctx context.Context, userID, otherID uint) ([]models.User, error) {
	ids, err := s.CommonFriends(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByIDs(ctx, ids)
}
