package server

import (
	"fmt"
	"net/http"
	"testing"

	"cinesocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewVoting(t *testing.T) {
	app, _ := newTestApp(t, nil)
	ann := createUser(t, app, "ann")
	bob := createUser(t, app, "bob")
	film := createFilm(t, app, "One", "2001-05-01")

	status, body := doJSON(t, app, http.MethodPost, "/api/reviews", map[string]interface{}{
		"content":    "Slow but rewarding",
		"isPositive": true,
		"userId":     ann,
		"filmId":     film,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	review := decode[models.Review](t, body)
	assert.Equal(t, 0, review.Useful)

	useful := func() int {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/reviews/%d", review.ID), nil)
		require.Equal(t, http.StatusOK, status)
		return decode[models.Review](t, body).Useful
	}
	vote := func(method, kind string, user uint) (int, []byte) {
		return doJSON(t, app, method, fmt.Sprintf("/api/reviews/%d/%s/%d", review.ID, kind, user), nil)
	}

	status, _ = vote(http.MethodPut, "like", bob)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, useful())

	status, _ = vote(http.MethodPut, "like", bob)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, useful())

	status, _ = vote(http.MethodPut, "dislike", bob)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, -1, useful())

	status, body = vote(http.MethodDelete, "like", bob)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNoSuchVote, decode[models.ErrorResponse](t, body).Code)
	assert.Equal(t, -1, useful())

	status, _ = vote(http.MethodDelete, "dislike", bob)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 0, useful())

	status, _ = vote(http.MethodPut, "like", 999)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/reviews/999/like/%d", bob), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReviewCRUD(t *testing.T) {
	app, _ := newTestApp(t, nil)
	ann := createUser(t, app, "ann")
	bob := createUser(t, app, "bob")
	f1 := createFilm(t, app, "One", "2001-05-01")
	f2 := createFilm(t, app, "Two", "2002-05-01")

	create := func(user, film uint) models.Review {
		status, body := doJSON(t, app, http.MethodPost, "/api/reviews", map[string]interface{}{
			"content": "fine", "isPositive": false, "userId": user, "filmId": film,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
		return decode[models.Review](t, body)
	}
	first := create(ann, f1)
	second := create(bob, f1)
	create(ann, f2)

	status, _ := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/reviews/%d/like/%d", second.ID, ann), nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/reviews?filmId=%d", f1), nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Review](t, body)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	status, body = doJSON(t, app, http.MethodGet, "/api/reviews?count=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Review](t, body), 1)

	status, body = doJSON(t, app, http.MethodPut, "/api/reviews", map[string]interface{}{
		"reviewId": second.ID, "content": "better on rewatch", "isPositive": true,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.Review](t, body)
	assert.Equal(t, "better on rewatch", updated.Content)
	assert.True(t, updated.IsPositive)
	assert.Equal(t, 1, updated.Useful)
	assert.Equal(t, bob, updated.UserID)

	status, _ = doJSON(t, app, http.MethodPut, "/api/reviews", map[string]interface{}{
		"reviewId": 999, "content": "x", "isPositive": true,
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/reviews", map[string]interface{}{
		"content": "no polarity", "userId": ann, "filmId": f1,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/reviews", map[string]interface{}{
		"content": "ghost film", "isPositive": true, "userId": ann, "filmId": 999,
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", second.ID), nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/reviews/%d", second.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", second.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
