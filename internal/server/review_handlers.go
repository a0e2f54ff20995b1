package server

import (
	"cinesocial/internal/models"
	"cinesocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createReviewRequest struct {
	Content    string `json:"content" validate:"required,max=5000"`
	IsPositive *bool  `json:"isPositive" validate:"required"`
	UserID     uint   `json:"userId" validate:"required"`
	FilmID     uint   `json:"filmId" validate:"required"`
}

type updateReviewRequest struct {
	ReviewID   uint   `json:"reviewId" validate:"required"`
	Content    string `json:"content" validate:"required,max=5000"`
	IsPositive *bool  `json:"isPositive" validate:"required"`
}

// CreateReview handles POST /api/reviews
func (s *Server) CreateReview(c *fiber.Ctx) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	review := &models.Review{
		Content:    req.Content,
		IsPositive: *req.IsPositive,
		UserID:     req.UserID,
		FilmID:     req.FilmID,
	}
	if err := s.reviewService.CreateReview(c.UserContext(), review); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// UpdateReview handles PUT /api/reviews
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	var req updateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	review := &models.Review{
		ID:         req.ReviewID,
		Content:    req.Content,
		IsPositive: *req.IsPositive,
	}
	if err := s.reviewService.UpdateReview(c.UserContext(), review); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// GetReview handles GET /api/reviews/:id
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	review, err := s.reviewService.GetReview(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/reviews/:id
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.reviewService.DeleteReview(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListReviews handles GET /api/reviews?filmId=&count=
func (s *Server) ListReviews(c *fiber.Ctx) error {
	filmID, err := parseOptionalQueryID(c, "filmId")
	if err != nil {
		return nil
	}
	count := c.QueryInt("count", service.DefaultReviewCount)

	reviews, err := s.reviewService.ListReviews(c.UserContext(), filmID, count)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(reviews)
}

// voteHandler handles PUT /api/reviews/:id/{like,dislike}/:userId
func (s *Server) voteHandler(kind models.VoteKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviewID, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		userID, err := parseID(c, "userId")
		if err != nil {
			return nil
		}
		if err := s.reviewService.Vote(c.UserContext(), reviewID, userID, kind); err != nil {
			return respondServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// retractHandler handles DELETE /api/reviews/:id/{like,dislike}/:userId
func (s *Server) retractHandler(kind models.VoteKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviewID, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		userID, err := parseID(c, "userId")
		if err != nil {
			return nil
		}
		if err := s.reviewService.RetractVote(c.UserContext(), reviewID, userID, kind); err != nil {
			return respondServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
