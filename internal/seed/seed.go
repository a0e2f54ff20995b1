package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cinesocial/internal/middleware"
	"cinesocial/internal/models"
	"cinesocial/internal/repository"
	"cinesocial/internal/service"

	"gorm.io/gorm"
)

// Options sizes the generated graph.
type Options struct {
	NumUsers       int
	NumFilms       int
	FriendsPerUser int
	LikesPerUser   int
	ReviewsPerFilm int
	VotesPerReview int
	// Seed makes runs reproducible
	Seed int64
}

// DefaultOptions is a small graph suitable for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:       30,
		NumFilms:       40,
		FriendsPerUser: 4,
		LikesPerUser:   6,
		ReviewsPerFilm: 2,
		VotesPerReview: 3,
		Seed:           1,
	}
}

// Result reports what a run created.
type Result struct {
	Genres  []models.Genre
	Users   []models.User
	Films   []models.Film
	Reviews []models.Review
}

// Seeder drives the engines to build a consistent demo graph.
type Seeder struct {
	db      *gorm.DB
	friends *service.FriendService
	ranking *service.RankingService
	reviews *service.ReviewService
	users   *service.UserService
	films   *service.FilmService
}

// NewSeeder wires the services over db.
func NewSeeder(db *gorm.DB) *Seeder {
	userRepo := repository.NewUserRepository(db)
	filmRepo := repository.NewFilmRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	return &Seeder{
		db:      db,
		friends: service.NewFriendService(friendRepo, userRepo),
		ranking: service.NewRankingService(filmRepo, userRepo, likeRepo),
		reviews: service.NewReviewService(reviewRepo, userRepo, filmRepo),
		users:   service.NewUserService(userRepo),
		films:   service.NewFilmService(filmRepo),
	}
}

// ClearAll removes every seeded row. Genres are reference data and stay.
func (s *Seeder) ClearAll() error {
	tables := []string{"review_votes", "reviews", "likes", "friendships", "film_genres", "films", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds genres from catalog, then users, films, friendships, likes, reviews and votes.
func (s *Seeder) Run(ctx context.Context, catalog *Catalog, opts Options) (*Result, error) {
	f := NewFactory(opts.Seed, s.users, s.films, s.reviews)
	res := &Result{}

	genres, err := Genres(s.db.WithContext(ctx), catalog)
	if err != nil {
		return nil, err
	}
	res.Genres = genres

	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		res.Users = append(res.Users, *u)
	}

	for i := 0; i < opts.NumFilms; i++ {
		film, err := f.CreateFilm(ctx, genres)
		if err != nil {
			return nil, fmt.Errorf("create film: %w", err)
		}
		res.Films = append(res.Films, *film)
	}

	confirmed, err := s.seedFriendships(ctx, f, res.Users, opts.FriendsPerUser)
	if err != nil {
		return nil, err
	}

	likes := 0
	if len(res.Films) > 0 {
		for _, u := range res.Users {
			for _, i := range f.pick(len(res.Films), opts.LikesPerUser) {
				if err := s.ranking.Like(ctx, res.Films[i].ID, u.ID); err != nil {
					return nil, fmt.Errorf("like: %w", err)
				}
				likes++
			}
		}
	}

	votes := 0
	if len(res.Users) > 0 {
		for _, film := range res.Films {
			for _, a := range f.pick(len(res.Users), opts.ReviewsPerFilm) {
				review, err := f.CreateReview(ctx, res.Users[a].ID, film.ID)
				if err != nil {
					return nil, fmt.Errorf("create review: %w", err)
				}
				for _, v := range f.pick(len(res.Users), opts.VotesPerReview) {
					kind := models.VoteDislike
					if f.faker.Bool() {
						kind = models.VoteLike
					}
					if err := s.reviews.Vote(ctx, review.ID, res.Users[v].ID, kind); err != nil {
						return nil, fmt.Errorf("vote: %w", err)
					}
					votes++
				}
				res.Reviews = append(res.Reviews, *review)
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("genres", len(res.Genres)),
		slog.Int("users", len(res.Users)),
		slog.Int("films", len(res.Films)),
		slog.Int("confirmed_friendships", confirmed),
		slog.Int("likes", likes),
		slog.Int("reviews", len(res.Reviews)),
		slog.Int("votes", votes),
	)
	return res, nil
}

// seedFriendships sends requests from every user; about half are reciprocated and
// become confirmed. Requests to already confirmed pairs are skipped.
func (s *Seeder) seedFriendships(ctx context.Context, f *Factory, users []models.User, perUser int) (int, error) {
	confirmed := 0
	for i, u := range users {
		for _, j := range f.pick(len(users), perUser+1) {
			if j == i {
				continue
			}
			other := users[j].ID
			status, err := s.friends.RequestFriendship(ctx, u.ID, other)
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			if err != nil {
				return 0, fmt.Errorf("friend request: %w", err)
			}
			if status == models.FriendshipStatusConfirmed {
				confirmed++
				continue
			}
			if f.faker.Bool() {
				if _, err := s.friends.RequestFriendship(ctx, other, u.ID); err != nil {
					return 0, fmt.Errorf("confirm friendship: %w", err)
				}
				confirmed++
			}
		}
	}
	return confirmed, nil
}
