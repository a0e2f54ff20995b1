// Package seed fills a database with a demo social graph: users, films, friendships,
// likes, reviews and review votes.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinesocial/internal/models"
	"cinesocial/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds entities with gofakeit and persists them through the services, so
// seeded data obeys the same rules as API traffic.
type Factory struct {
	faker   *gofakeit.Faker
	users   *service.UserService
	films   *service.FilmService
	reviews *service.ReviewService
	seq     int
}

// NewFactory returns a Factory whose output is fully determined by seed.
func NewFactory(seed int64, users *service.UserService, films *service.FilmService, reviews *service.ReviewService) *Factory {
	return &Factory{
		faker:   gofakeit.New(seed),
		users:   users,
		films:   films,
		reviews: reviews,
	}
}

// BuildUser returns an unsaved user with a unique login and email.
func (f *Factory) BuildUser() *models.User {
	f.seq++
	login := fmt.Sprintf("%s%d", strings.ReplaceAll(f.faker.Username(), " ", ""), f.seq)
	birthday := f.faker.DateRange(
		time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
	).UTC().Truncate(24 * time.Hour)
	return &models.User{
		Email:    fmt.Sprintf("%s@%s", login, f.faker.DomainName()),
		Login:    login,
		Name:     f.faker.Name(),
		Birthday: &birthday,
	}
}

// CreateUser builds and stores a user.
func (f *Factory) CreateUser(ctx context.Context) (*models.User, error) {
	user := f.BuildUser()
	if err := f.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildFilm returns an unsaved film released between 1960 and today.
func (f *Factory) BuildFilm() *models.Film {
	description := f.faker.Sentence(12)
	if len(description) > 200 {
		description = description[:200]
	}
	released := f.faker.DateRange(
		time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Now().UTC(),
	).UTC().Truncate(24 * time.Hour)
	return &models.Film{
		Name:        f.faker.MovieName(),
		Description: description,
		ReleaseDate: released,
		Duration:    f.faker.Number(80, 180),
	}
}

// CreateFilm builds and stores a film tagged with one or two of the given genres.
func (f *Factory) CreateFilm(ctx context.Context, genres []models.Genre) (*models.Film, error) {
	film := f.BuildFilm()
	var genreIDs []uint
	if len(genres) > 0 {
		for _, i := range f.pick(len(genres), f.faker.Number(1, 2)) {
			genreIDs = append(genreIDs, genres[i].ID)
		}
	}
	if err := f.films.CreateFilm(ctx, film, genreIDs); err != nil {
		return nil, err
	}
	return film, nil
}

// CreateReview stores a review by author about film.
func (f *Factory) CreateReview(ctx context.Context, authorID, filmID uint) (*models.Review, error) {
	review := &models.Review{
		Content:    f.faker.Paragraph(1, 2, 12, " "),
		IsPositive: f.faker.Bool(),
		UserID:     authorID,
		FilmID:     filmID,
	}
	if err := f.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// pick returns k distinct indexes in [0, n), or all of them when k >= n.
func (f *Factory) pick(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if k > n {
		k = n
	}
	for i := 0; i < k; i++ {
		j := f.faker.Number(i, n-1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
