package server

import (
	"time"

	"cinesocial/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Login    string `json:"login" validate:"required"`
	Name     string `json:"name"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	user := &models.User{Email: req.Email, Login: req.Login, Name: req.Name}
	if req.Birthday != "" {
		// Format already checked by the datetime tag
		birthday, _ := time.Parse(time.DateOnly, req.Birthday)
		user.Birthday = &birthday
	}

	if err := s.userService.CreateUser(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers handles GET /api/users?limit=&offset=
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
