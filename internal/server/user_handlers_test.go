package server

import (
	"fmt"
	"net/http"
	"testing"

	"cinesocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	app, _ := newTestApp(t, nil)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			body:           map[string]string{"email": "ann@example.com", "login": "ann", "birthday": "1990-04-01"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Duplicate email",
			body:           map[string]string{"email": "ann@example.com", "login": "ann2"},
			expectedStatus: http.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Invalid email",
			body:           map[string]string{"email": "not-an-email", "login": "bob"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name:           "Bad birthday format",
			body:           map[string]string{"email": "c@example.com", "login": "c", "birthday": "01/04/1990"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name:           "Login with spaces",
			body:           map[string]string{"email": "d@example.com", "login": "d d"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, tt.expectedStatus, status, string(body))
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decode[models.ErrorResponse](t, body).Code)
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	app, _ := newTestApp(t, nil)
	id := createUser(t, app, "ann")

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil)
	require.Equal(t, http.StatusOK, status)
	user := decode[models.User](t, body)
	assert.Equal(t, "ann", user.Login)
	assert.Equal(t, "ann", user.Name)

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListUsers(t *testing.T) {
	app, _ := newTestApp(t, nil)
	for _, login := range []string{"a", "b", "c"} {
		createUser(t, app, login)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/users?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, status)
	users := decode[[]models.User](t, body)
	require.Len(t, users, 2)
	assert.Equal(t, "b", users[0].Login)
	assert.Equal(t, "c", users[1].Login)
}
