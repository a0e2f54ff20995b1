package repository

import (
	"context"

	"cinesocial/internal/models"
	"cinesocial/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores user -> film like edges.
type LikeRepository interface {
	Has(ctx context.Context, userID, filmID uint) (bool, error)
	// Insert adds the edge and reports whether it was new.
	Insert(ctx context.Context, userID, filmID uint) (bool, error)
	// Delete removes the edge and reports whether it existed.
	Delete(ctx context.Context, userID, filmID uint) (bool, error)
	LikesByUser(ctx context.Context, userID uint) ([]uint, error)
	LikeCountByFilm(ctx context.Context, filmIDs []uint) (map[uint]int, error)
	SharedLikeCounts(ctx context.Context, userID uint) (map[uint]int, error)
	WithinTx(ctx context.Context, fn func(repo LikeRepository) error) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) WithinTx(ctx context.Context, fn func(repo LikeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&likeRepository{db: tx})
	})
}

func (r *likeRepository) Has(ctx context.Context, userID, filmID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND film_id = ?", userID, filmID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Insert(ctx context.Context, userID, filmID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, FilmID: filmID})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, filmID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND film_id = ?", userID, filmID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// LikesByUser returns the ids of films liked by userID, ascending.
func (r *likeRepository) LikesByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("film_id ASC").
		Pluck("film_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

type filmCount struct {
	FilmID uint
	Likes  int
}

// LikeCountByFilm returns the like count of each film in filmIDs. Films without likes are absent.
func (r *likeRepository) LikeCountByFilm(ctx context.Context, filmIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return counts, nil
	}
	defer observability.TrackQuery("like_count_by_film", "likes")()

	var rows []filmCount
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("film_id, COUNT(*) AS likes").
		Where("film_id IN ?", filmIDs).
		Group("film_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.FilmID] = row.Likes
	}
	return counts, nil
}

type userCount struct {
	UserID uint
	Shared int
}

// SharedLikeCounts returns, for every other user who liked at least one film userID liked,
// the number of such films.
func (r *likeRepository) SharedLikeCounts(ctx context.Context, userID uint) (map[uint]int, error) {
	defer observability.TrackQuery("shared_like_counts", "likes")()

	var rows []userCount
	if err := r.db.WithContext(ctx).Raw(
		`SELECT l2.user_id AS user_id, COUNT(*) AS shared
		 FROM likes l1
		 JOIN likes l2 ON l1.film_id = l2.film_id AND l2.user_id <> l1.user_id
		 WHERE l1.user_id = ?
		 GROUP BY l2.user_id`,
		userID,
	).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Shared
	}
	return counts, nil
}
