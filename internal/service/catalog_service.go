package service

import (
	"context"
	"strings"
	"time"

	"cinesocial/internal/models"
	"cinesocial/internal/repository"
)

// earliestReleaseDate is the date of the first public film screening.
var earliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// UserService manages user records.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser stores a user, defaulting the display name to the login.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	user.Login = strings.TrimSpace(user.Login)
	if strings.ContainsAny(user.Login, " \t") {
		return models.NewValidationError("Login must not contain spaces")
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	if user.Birthday != nil && user.Birthday.After(time.Now()) {
		return models.NewValidationError("Birthday cannot be in the future")
	}
	return s.userRepo.Create(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// FilmService manages the film catalog and genres.
type FilmService struct {
	filmRepo repository.FilmRepository
}

// NewFilmService returns a new FilmService.
func NewFilmService(filmRepo repository.FilmRepository) *FilmService {
	return &FilmService{filmRepo: filmRepo}
}

// CreateFilm stores a film linked to the given genres.
func (s *FilmService) CreateFilm(ctx context.Context, film *models.Film, genreIDs []uint) error {
	if film.ReleaseDate.Before(earliestReleaseDate) {
		return models.NewValidationError("Release date must not be before 1895-12-28")
	}
	if film.Duration <= 0 {
		return models.NewValidationError("Duration must be positive")
	}
	return s.filmRepo.Create(ctx, film, genreIDs)
}

func (s *FilmService) GetFilm(ctx context.Context, id uint) (*models.Film, error) {
	return s.filmRepo.GetByID(ctx, id)
}

func (s *FilmService) ListFilms(ctx context.Context) ([]models.Film, error) {
	return s.filmRepo.List(ctx)
}

func (s *FilmService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.filmRepo.ListGenres(ctx)
}
