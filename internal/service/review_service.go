package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cinesocial/internal/middleware"
	"cinesocial/internal/models"
	"cinesocial/internal/observability"
	"cinesocial/internal/repository"
)

// DefaultReviewCount is the page size of ListReviews when none is given.
const DefaultReviewCount = 10

const maxReviewContentLen = 5000

// ReviewService owns reviews and the like/dislike vote state machine that drives their
// usefulness: NONE, LIKED, DISLIKED per (user, review).
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	filmRepo   repository.FilmRepository
}

// NewReviewService returns a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository, filmRepo repository.FilmRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		filmRepo:   filmRepo,
	}
}

func (s *ReviewService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func requireReview(ctx context.Context, repo repository.ReviewRepository, id uint) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Review", id)
	}
	return nil
}

// Vote sets userID's vote on reviewID to kind. Repeating the current vote is a no-op;
// voting the opposite kind replaces the previous vote. The vote row and the usefulness
// counter change together or not at all.
func (s *ReviewService) Vote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) (err error) {
	span, ctx := observability.NewSpan(ctx, "ReviewService.Vote",
		observability.ReviewAttr(reviewID), observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)

	if !kind.Valid() {
		return models.NewValidationError(fmt.Sprintf("unknown vote kind %q", kind))
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	from := "NONE"
	changed := false
	err = s.reviewRepo.WithinTx(ctx, func(tx repository.ReviewRepository) error {
		if err := requireReview(ctx, tx, reviewID); err != nil {
			return err
		}

		current, voted, err := tx.GetVote(ctx, reviewID, userID)
		if err != nil {
			return err
		}
		if voted && current == kind {
			return nil
		}

		if voted {
			from = string(current)
			if err := retract(ctx, tx, reviewID, userID, current); err != nil {
				return err
			}
		}

		if err := tx.InsertVote(ctx, reviewID, userID, kind); err != nil {
			return err
		}
		rows, err := tx.AdjustUseful(ctx, reviewID, kind.Delta())
		if err != nil {
			return err
		}
		if rows == 0 {
			if _, err := tx.DeleteVote(ctx, reviewID, userID, kind); err != nil {
				return err
			}
			observability.CompensatingRollbacks.WithLabelValues("vote").Inc()
			return models.NewStorageInconsistencyError(
				fmt.Sprintf("usefulness of review %d was not updated, vote discarded", reviewID))
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		observability.ReviewVoteTransitions.WithLabelValues(from, string(kind)).Inc()
		middleware.Logger.InfoContext(ctx, "review vote changed",
			slog.Uint64("review_id", uint64(reviewID)),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("from", from),
			slog.String("to", string(kind)),
		)
	}
	return nil
}

// RetractVote removes userID's vote of the given kind from reviewID. Retracting a vote
// that does not exist fails with NO_SUCH_VOTE.
func (s *ReviewService) RetractVote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) (err error) {
	span, ctx := observability.NewSpan(ctx, "ReviewService.RetractVote",
		observability.ReviewAttr(reviewID), observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)

	if !kind.Valid() {
		return models.NewValidationError(fmt.Sprintf("unknown vote kind %q", kind))
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	err = s.reviewRepo.WithinTx(ctx, func(tx repository.ReviewRepository) error {
		if err := requireReview(ctx, tx, reviewID); err != nil {
			return err
		}
		return retract(ctx, tx, reviewID, userID, kind)
	})
	if err != nil {
		return err
	}

	observability.ReviewVoteTransitions.WithLabelValues(string(kind), "NONE").Inc()
	middleware.Logger.InfoContext(ctx, "review vote retracted",
		slog.Uint64("review_id", uint64(reviewID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("kind", string(kind)),
	)
	return nil
}

// retract deletes the vote and removes its usefulness contribution. A zero-row counter
// update fails the transaction, which restores the vote.
func retract(ctx context.Context, tx repository.ReviewRepository, reviewID, userID uint, kind models.VoteKind) error {
	deleted, err := tx.DeleteVote(ctx, reviewID, userID, kind)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNoSuchVoteError(userID, reviewID, kind)
	}

	rows, err := tx.AdjustUseful(ctx, reviewID, -kind.Delta())
	if err != nil {
		return err
	}
	if rows == 0 {
		observability.CompensatingRollbacks.WithLabelValues("retract").Inc()
		return models.NewStorageInconsistencyError(
			fmt.Sprintf("usefulness of review %d was not updated, retraction discarded", reviewID))
	}
	return nil
}

func validateReview(review *models.Review) error {
	review.Content = strings.TrimSpace(review.Content)
	if review.Content == "" {
		return models.NewValidationError("Review content is required")
	}
	if len(review.Content) > maxReviewContentLen {
		return models.NewValidationError("Review content too long (max 5000 characters)")
	}
	return nil
}

// CreateReview stores a new review by an existing user about an existing film.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) (err error) {
	span, ctx := observability.NewSpan(ctx, "ReviewService.CreateReview",
		observability.FilmAttr(review.FilmID), observability.UserAttr("user.id", review.UserID))
	defer span.EndWith(&err)

	if err := validateReview(review); err != nil {
		return err
	}
	if err := s.requireUser(ctx, review.UserID); err != nil {
		return err
	}
	ok, err := s.filmRepo.Exists(ctx, review.FilmID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Film", review.FilmID)
	}

	return s.reviewRepo.Create(ctx, review)
}

// UpdateReview changes the content and polarity of a review; author, film and usefulness
// are left as stored.
func (s *ReviewService) UpdateReview(ctx context.Context, review *models.Review) (err error) {
	span, ctx := observability.NewSpan(ctx, "ReviewService.UpdateReview", observability.ReviewAttr(review.ID))
	defer span.EndWith(&err)

	if err := validateReview(review); err != nil {
		return err
	}
	return s.reviewRepo.Update(ctx, review)
}

// GetReview returns a review by id.
func (s *ReviewService) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

// DeleteReview removes a review and every vote on it.
func (s *ReviewService) DeleteReview(ctx context.Context, id uint) (err error) {
	span, ctx := observability.NewSpan(ctx, "ReviewService.DeleteReview", observability.ReviewAttr(id))
	defer span.EndWith(&err)

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "review deleted", slog.Uint64("review_id", uint64(id)))
	return nil
}

// ListReviews returns up to count reviews, most useful first. A nil filmID lists reviews
// of all films; a non-positive count uses DefaultReviewCount.
func (s *ReviewService) ListReviews(ctx context.Context, filmID *uint, count int) ([]models.Review, error) {
	if count <= 0 {
		count = DefaultReviewCount
	}
	return s.reviewRepo.List(ctx, filmID, count)
}
