package repository

import (
	"context"
	"errors"

	"cinesocial/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository stores reviews, their votes and the usefulness counter.
type ReviewRepository interface {
	Exists(ctx context.Context, id uint) (bool, error)
	// GetVote returns the current vote of userID on reviewID, or false when there is none.
	GetVote(ctx context.Context, reviewID, userID uint) (models.VoteKind, bool, error)
	InsertVote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) error
	// DeleteVote removes a vote of the given kind and reports whether one existed.
	DeleteVote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) (bool, error)
	// AdjustUseful adds delta to the review's counter and returns the number of rows updated.
	AdjustUseful(ctx context.Context, reviewID uint, delta int) (int64, error)

	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filmID *uint, limit int) ([]models.Review, error)

	WithinTx(ctx context.Context, fn func(repo ReviewRepository) error) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithinTx(ctx context.Context, fn func(repo ReviewRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reviewRepository{db: tx})
	})
}

func (r *reviewRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *reviewRepository) GetVote(ctx context.Context, reviewID, userID uint) (models.VoteKind, bool, error) {
	var vote models.ReviewVote
	err := forUpdate(r.db.WithContext(ctx)).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, models.NewInternalError(err)
	}
	return vote.Kind, true, nil
}

func (r *reviewRepository) InsertVote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) error {
	vote := &models.ReviewVote{UserID: userID, ReviewID: reviewID, Kind: kind}
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User has already voted on this review")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) DeleteVote(ctx context.Context, reviewID, userID uint, kind models.VoteKind) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("review_id = ? AND user_id = ? AND kind = ?", reviewID, userID, kind).
		Delete(&models.ReviewVote{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *reviewRepository) AdjustUseful(ctx context.Context, reviewID uint, delta int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("useful", gorm.Expr("useful + ?", delta))
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}

// Create stores a new review. The usefulness counter always starts at zero.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = 0
	review.Useful = 0
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update changes the content and polarity of a review and reloads it. Useful is never written.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"content":     review.Content,
			"is_positive": review.IsPositive,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Review", review.ID)
	}

	stored, err := r.GetByID(ctx, review.ID)
	if err != nil {
		return err
	}
	*review = *stored
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

// Delete removes a review together with its votes.
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewVote{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		result := tx.Delete(&models.Review{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Review", id)
		}
		return nil
	})
}

// List returns reviews ordered by usefulness, most useful first. A nil filmID lists all films.
func (r *reviewRepository) List(ctx context.Context, filmID *uint, limit int) ([]models.Review, error) {
	var reviews []models.Review
	q := r.db.WithContext(ctx).Order("useful DESC").Order("id ASC")
	if filmID != nil {
		q = q.Where("film_id = ?", *filmID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}
