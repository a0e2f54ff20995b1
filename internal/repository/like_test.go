package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_InsertDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	user := createUsers(t, db, 1)[0]
	film := createFilm(t, db, "Heat", time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC))

	inserted, err := repo.Insert(ctx, user, film)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, user, film)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert is a no-op")

	has, err := repo.Has(ctx, user, film)
	require.NoError(t, err)
	assert.True(t, has)

	deleted, err := repo.Delete(ctx, user, film)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, user, film)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLikeRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	users := createUsers(t, db, 3)
	release := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	f1 := createFilm(t, db, "One", release)
	f2 := createFilm(t, db, "Two", release)
	f3 := createFilm(t, db, "Three", release)

	for _, like := range [][2]uint{
		{users[0], f1}, {users[0], f2},
		{users[1], f1}, {users[1], f2}, {users[1], f3},
		{users[2], f3},
	} {
		_, err := repo.Insert(ctx, like[0], like[1])
		require.NoError(t, err)
	}

	counts, err := repo.LikeCountByFilm(ctx, []uint{f1, f2, f3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{f1: 2, f2: 2, f3: 2}, counts)

	liked, err := repo.LikesByUser(ctx, users[1])
	require.NoError(t, err)
	assert.Equal(t, []uint{f1, f2, f3}, liked)

	shared, err := repo.SharedLikeCounts(ctx, users[0])
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{users[1]: 2}, shared)

	shared, err = repo.SharedLikeCounts(ctx, users[2])
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{users[1]: 1}, shared)

	empty, err := repo.LikeCountByFilm(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLikeRepository_SharedLikeCountsSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT l2.user_id AS user_id, COUNT(*) AS shared`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "shared"}).
			AddRow(3, 4).
			AddRow(9, 1))

	shared, err := repo.SharedLikeCounts(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{3: 4, 9: 1}, shared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_InsertUsesOnConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "likes"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.Insert(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
