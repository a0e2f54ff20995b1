package server

import (
	"github.com/gofiber/fiber/v2"
)

// RequestFriendship handles PUT /api/users/:id/friends/:friendId
func (s *Server) RequestFriendship(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	friendID, err := parseID(c, "friendId")
	if err != nil {
		return nil
	}

	status, err := s.friendService.RequestFriendship(c.UserContext(), userID, friendID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id":   userID,
		"friend_id": friendID,
		"status":    status,
	})
}

// RemoveFriendship handles DELETE /api/users/:id/friends/:friendId
func (s *Server) RemoveFriendship(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	friendID, err := parseID(c, "friendId")
	if err != nil {
		return nil
	}

	if err := s.friendService.RemoveFriendship(c.UserContext(), userID, friendID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFriends handles GET /api/users/:id/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	friends, err := s.friendService.ListFriendUsers(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(friends)
}

// GetCommonFriends handles GET /api/users/:id/friends/common/:otherId
func (s *Server) GetCommonFriends(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	otherID, err := parseID(c, "otherId")
	if err != nil {
		return nil
	}
	common, err := s.friendService.CommonFriendUsers(c.UserContext(), userID, otherID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(common)
}
