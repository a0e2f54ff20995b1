package repository

import (
	"context"
	"errors"
	"time"

	"cinesocial/internal/models"
	"cinesocial/internal/observability"

	"gorm.io/gorm"
)

// FilmFilter narrows the popularity candidate set. Nil fields do not filter.
type FilmFilter struct {
	GenreID *uint
	Year    *int
}

// FilmRepository defines persistence operations for films and their genres.
type FilmRepository interface {
	Exists(ctx context.Context, id uint) (bool, error)
	MatchingFilter(ctx context.Context, filter FilmFilter) ([]uint, error)
	GetByID(ctx context.Context, id uint) (*models.Film, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Film, error)
	Create(ctx context.Context, film *models.Film, genreIDs []uint) error
	List(ctx context.Context) ([]models.Film, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, genre *models.Genre) error
}

type filmRepository struct {
	db *gorm.DB
}

// NewFilmRepository returns a new FilmRepository implementation.
func NewFilmRepository(db *gorm.DB) FilmRepository {
	return &filmRepository{db: db}
}

func (r *filmRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Film{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// MatchingFilter returns the ids of every film satisfying the filter, ascending.
// The year matches on the UTC release date.
func (r *filmRepository) MatchingFilter(ctx context.Context, filter FilmFilter) ([]uint, error) {
	defer observability.TrackQuery("matching_filter", "films")()

	q := r.db.WithContext(ctx).Model(&models.Film{})
	if filter.GenreID != nil {
		q = q.Where("id IN (?)",
			r.db.Table("film_genres").Select("film_id").Where("genre_id = ?", *filter.GenreID))
	}
	if filter.Year != nil {
		from := time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("release_date >= ? AND release_date < ?", from, from.AddDate(1, 0, 0))
	}

	var ids []uint
	if err := q.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (r *filmRepository) GetByID(ctx context.Context, id uint) (*models.Film, error) {
	var film models.Film
	if err := r.db.WithContext(ctx).Preload("Genres").First(&film, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Film", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &film, nil
}

// GetByIDs returns the films with the given ids in the order the ids were given.
// Unknown ids are skipped.
func (r *filmRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Film, error) {
	if len(ids) == 0 {
		return []models.Film{}, nil
	}
	var films []models.Film
	if err := r.db.WithContext(ctx).Preload("Genres").Where("id IN ?", ids).Find(&films).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]models.Film, len(films))
	for _, f := range films {
		byID[f.ID] = f
	}
	ordered := make([]models.Film, 0, len(films))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// Create stores a film and links it to the given genres. Unknown genre ids are a validation error.
func (r *filmRepository) Create(ctx context.Context, film *models.Film, genreIDs []uint) error {
	film.ReleaseDate = film.ReleaseDate.UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(genreIDs) > 0 {
			var genres []models.Genre
			if err := tx.Where("id IN ?", genreIDs).Find(&genres).Error; err != nil {
				return models.NewInternalError(err)
			}
			if len(genres) != len(uniqueIDs(genreIDs)) {
				return models.NewValidationError("unknown genre id")
			}
			film.Genres = genres
		}
		if err := tx.Create(film).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *filmRepository) List(ctx context.Context) ([]models.Film, error) {
	var films []models.Film
	if err := r.db.WithContext(ctx).Preload("Genres").Order("id ASC").Find(&films).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return films, nil
}

func (r *filmRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&genres).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return genres, nil
}

func (r *filmRepository) CreateGenre(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Genre already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
