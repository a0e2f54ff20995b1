package repository

import (
	"context"
	"testing"

	"cinesocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Email: "a@example.com", Login: "alice", Name: "Alice"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, &models.User{Email: "a@example.com", Login: "other"})
	assert.ErrorIs(t, err, models.ErrConflict)

	exists, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, u.ID+100)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetByID(ctx, u.ID+100)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	users, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
