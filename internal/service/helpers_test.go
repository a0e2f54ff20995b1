package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cinesocial/internal/database"
	"cinesocial/internal/models"
	"cinesocial/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// fixture wires every engine to one sqlite database.
type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	films    repository.FilmRepository
	likes    repository.LikeRepository
	friends  repository.FriendRepository
	reviews  repository.ReviewRepository
	friendSv *FriendService
	rankSv   *RankingService
	reviewSv *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{
		db:      db,
		users:   repository.NewUserRepository(db),
		films:   repository.NewFilmRepository(db),
		likes:   repository.NewLikeRepository(db),
		friends: repository.NewFriendRepository(db),
		reviews: repository.NewReviewRepository(db),
	}
	f.friendSv = NewFriendService(f.friends, f.users)
	f.rankSv = NewRankingService(f.films, f.users, f.likes)
	f.reviewSv = NewReviewService(f.reviews, f.users, f.films)
	return f
}

func (f *fixture) user(t *testing.T) uint {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	u := &models.User{
		Email: fmt.Sprintf("u%d@example.com", count+1),
		Login: fmt.Sprintf("u%d", count+1),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) film(t *testing.T, year int, genreIDs ...uint) uint {
	t.Helper()
	film := &models.Film{
		Name:        fmt.Sprintf("film-%d-%d", year, time.Now().UnixNano()),
		ReleaseDate: time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
		Duration:    120,
	}
	require.NoError(t, f.films.Create(context.Background(), film, genreIDs))
	return film.ID
}

func (f *fixture) like(t *testing.T, filmID uint, userIDs ...uint) {
	t.Helper()
	for _, u := range userIDs {
		require.NoError(t, f.rankSv.Like(context.Background(), filmID, u))
	}
}

func (f *fixture) review(t *testing.T, authorID, filmID uint) *models.Review {
	t.Helper()
	r := &models.Review{Content: "worth it", IsPositive: true, UserID: authorID, FilmID: filmID}
	require.NoError(t, f.reviewSv.CreateReview(context.Background(), r))
	return r
}

func (f *fixture) useful(t *testing.T, reviewID uint) int {
	t.Helper()
	r, err := f.reviews.GetByID(context.Background(), reviewID)
	require.NoError(t, err)
	return r.Useful
}

func (f *fixture) votes(t *testing.T, reviewID, userID uint) []models.ReviewVote {
	t.Helper()
	var votes []models.ReviewVote
	require.NoError(t, f.db.Where("review_id = ? AND user_id = ?", reviewID, userID).Find(&votes).Error)
	return votes
}

// userRepoStub is a function-field UserRepository for unit tests.
type userRepoStub struct {
	existsFn func(context.Context, uint) (bool, error)
}

func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (s *userRepoStub) GetByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id})
	}
	return users, nil
}
func (s *userRepoStub) Create(context.Context, *models.User) error { return nil }
func (s *userRepoStub) List(context.Context, int, int) ([]models.User, error) {
	return nil, nil
}

func allUsersExist() *userRepoStub {
	return &userRepoStub{existsFn: func(context.Context, uint) (bool, error) { return true, nil }}
}
