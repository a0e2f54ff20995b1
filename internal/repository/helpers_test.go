package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cinesocial/internal/database"
	"cinesocial/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
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

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

var userSeq int

func createUsers(t *testing.T, db *gorm.DB, n int) []uint {
	t.Helper()
	repo := NewUserRepository(db)
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		userSeq++
		u := &models.User{
			Email: fmt.Sprintf("user%d@example.com", userSeq),
			Login: fmt.Sprintf("user%d", userSeq),
		}
		require.NoError(t, repo.Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func createFilm(t *testing.T, db *gorm.DB, name string, release time.Time, genreIDs ...uint) uint {
	t.Helper()
	f := &models.Film{Name: name, ReleaseDate: release, Duration: 100}
	require.NoError(t, NewFilmRepository(db).Create(context.Background(), f, genreIDs))
	return f.ID
}
