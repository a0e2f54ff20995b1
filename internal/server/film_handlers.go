package server

import (
	"time"

	"cinesocial/internal/models"
	"cinesocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

type genreRef struct {
	ID uint `json:"id" validate:"gt=0"`
}

type createFilmRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description" validate:"max=200"`
	ReleaseDate string     `json:"releaseDate" validate:"required,datetime=2006-01-02"`
	Duration    int        `json:"duration" validate:"gt=0"`
	Genres      []genreRef `json:"genres" validate:"dive"`
}

// CreateFilm handles POST /api/films
func (s *Server) CreateFilm(c *fiber.Ctx) error {
	var req createFilmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	released, _ := time.Parse(time.DateOnly, req.ReleaseDate)
	film := &models.Film{
		Name:        req.Name,
		Description: req.Description,
		ReleaseDate: released,
		Duration:    req.Duration,
	}
	genreIDs := make([]uint, 0, len(req.Genres))
	for _, g := range req.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	if err := s.filmService.CreateFilm(c.UserContext(), film, genreIDs); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(film)
}

// ListFilms handles GET /api/films
func (s *Server) ListFilms(c *fiber.Ctx) error {
	films, err := s.filmService.ListFilms(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(films)
}

// GetFilm handles GET /api/films/:id
func (s *Server) GetFilm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	film, err := s.filmService.GetFilm(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(film)
}

// ListGenres handles GET /api/genres
func (s *Server) ListGenres(c *fiber.Ctx) error {
	genres, err := s.filmService.ListGenres(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(genres)
}

// LikeFilm handles PUT /api/films/:id/like/:userId
func (s *Server) LikeFilm(c *fiber.Ctx) error {
	filmID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.rankingService.Like(c.UserContext(), filmID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikeFilm handles DELETE /api/films/:id/like/:userId
func (s *Server) UnlikeFilm(c *fiber.Ctx) error {
	filmID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.rankingService.Unlike(c.UserContext(), filmID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPopularFilms handles GET /api/films/popular?count=&genreId=&year=
func (s *Server) GetPopularFilms(c *fiber.Ctx) error {
	q := service.PopularQuery{Limit: s.config.PopularDefaultLimit}
	if raw := c.Query("count"); raw != "" {
		count := c.QueryInt("count", -1)
		if count <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("count must be a positive integer"))
		}
		q.Limit = count
	}

	genreID, err := parseOptionalQueryID(c, "genreId")
	if err != nil {
		return nil
	}
	q.GenreID = genreID

	if raw := c.Query("year"); raw != "" {
		year := c.QueryInt("year", 0)
		if year <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("year must be a positive integer"))
		}
		q.Year = &year
	}

	films, err := s.rankingService.PopularFilms(c.UserContext(), q)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(films)
}

// GetCommonFilms handles GET /api/films/common?userId=&friendId=
func (s *Server) GetCommonFilms(c *fiber.Ctx) error {
	userID, err := parseOptionalQueryID(c, "userId")
	if err != nil {
		return nil
	}
	friendID, err := parseOptionalQueryID(c, "friendId")
	if err != nil {
		return nil
	}
	if userID == nil || friendID == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId and friendId are required"))
	}

	films, err := s.rankingService.CommonFilms(c.UserContext(), *userID, *friendID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(films)
}

// GetRecommendations handles GET /api/users/:id/recommendations
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	films, err := s.rankingService.Recommendations(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(films)
}
