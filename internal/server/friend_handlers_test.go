package server

import (
	"fmt"
	"net/http"
	"testing"

	"cinesocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipLifecycle(t *testing.T) {
	app, _ := newTestApp(t, nil)
	ann := createUser(t, app, "ann")
	bob := createUser(t, app, "bob")
	cat := createUser(t, app, "cat")

	friendsOf := func(id uint) []models.User {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/friends", id), nil)
		require.Equal(t, http.StatusOK, status)
		return decode[[]models.User](t, body)
	}
	request := func(from, to uint) (int, []byte) {
		return doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d/friends/%d", from, to), nil)
	}

	status, body := request(ann, bob)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "PENDING", decode[map[string]interface{}](t, body)["status"])

	// Pending requests are visible to the requester only
	require.Len(t, friendsOf(ann), 1)
	assert.Empty(t, friendsOf(bob))

	status, body = request(bob, ann)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CONFIRMED", decode[map[string]interface{}](t, body)["status"])
	assert.Len(t, friendsOf(bob), 1)

	status, body = request(ann, bob)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, decode[models.ErrorResponse](t, body).Code)

	_, _ = request(cat, ann)
	_, _ = request(ann, cat)
	_, _ = request(cat, bob)
	_, _ = request(bob, cat)

	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/friends/common/%d", ann, bob), nil)
	require.Equal(t, http.StatusOK, status)
	common := decode[[]models.User](t, body)
	require.Len(t, common, 1)
	assert.Equal(t, cat, common[0].ID)

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d/friends/%d", bob, ann), nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Len(t, friendsOf(ann), 1)
	assert.Len(t, friendsOf(bob), 1)

	// Removing again is idempotent
	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d/friends/%d", bob, ann), nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestFriendshipErrors(t *testing.T) {
	app, _ := newTestApp(t, nil)
	ann := createUser(t, app, "ann")

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"Self request", http.MethodPut, fmt.Sprintf("/api/users/%d/friends/%d", ann, ann), http.StatusBadRequest},
		{"Unknown friend", http.MethodPut, fmt.Sprintf("/api/users/%d/friends/999", ann), http.StatusNotFound},
		{"Unknown user", http.MethodGet, "/api/users/999/friends", http.StatusNotFound},
		{"Invalid friend id", http.MethodPut, fmt.Sprintf("/api/users/%d/friends/x", ann), http.StatusBadRequest},
		{"Remove unknown", http.MethodDelete, fmt.Sprintf("/api/users/%d/friends/999", ann), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, status, string(body))
		})
	}
}
