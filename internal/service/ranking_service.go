package service

import (
	"context"
	"log/slog"
	"sort"

	"cinesocial/internal/middleware"
	"cinesocial/internal/models"
	"cinesocial/internal/observability"
	"cinesocial/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PopularQuery selects and truncates the popularity ranking.
type PopularQuery struct {
	// Limit truncates the result; zero or negative returns every candidate.
	Limit   int
	GenreID *uint
	Year    *int
}

// RankingService maintains film like edges and derives popularity and recommendations
// from them. Nothing is cached between calls.
type RankingService struct {
	filmRepo repository.FilmRepository
	userRepo repository.UserRepository
	likeRepo repository.LikeRepository
}

// NewRankingService returns a new RankingService.
func NewRankingService(filmRepo repository.FilmRepository, userRepo repository.UserRepository, likeRepo repository.LikeRepository) *RankingService {
	return &RankingService{
		filmRepo: filmRepo,
		userRepo: userRepo,
		likeRepo: likeRepo,
	}
}

func (s *RankingService) requireFilm(ctx context.Context, id uint) error {
	ok, err := s.filmRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Film", id)
	}
	return nil
}

func (s *RankingService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

// Like records that userID likes filmID. Liking twice is a no-op.
func (s *RankingService) Like(ctx context.Context, filmID, userID uint) (err error) {
	span, ctx := observability.NewSpan(ctx, "RankingService.Like",
		observability.FilmAttr(filmID), observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)

	if err := s.requireFilm(ctx, filmID); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	var inserted bool
	err = s.likeRepo.WithinTx(ctx, func(tx repository.LikeRepository) error {
		var err error
		inserted, err = tx.Insert(ctx, userID, filmID)
		return err
	})
	if err != nil {
		return err
	}

	if inserted {
		observability.LikeEdgeChanges.WithLabelValues("like").Inc()
		middleware.Logger.InfoContext(ctx, "film liked",
			slog.Uint64("film_id", uint64(filmID)),
			slog.Uint64("user_id", uint64(userID)),
		)
	}
	return nil
}

// Unlike removes the like edge. Removing an absent edge fails with NO_SUCH_EDGE.
func (s *RankingService) Unlike(ctx context.Context, filmID, userID uint) (err error) {
	span, ctx := observability.NewSpan(ctx, "RankingService.Unlike",
		observability.FilmAttr(filmID), observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)

	if err := s.requireFilm(ctx, filmID); err != nil {
		return err
	}

	err = s.likeRepo.WithinTx(ctx, func(tx repository.LikeRepository) error {
		deleted, err := tx.Delete(ctx, userID, filmID)
		if err != nil {
			return err
		}
		if !deleted {
			return models.NewNoSuchEdgeError(userID, filmID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.LikeEdgeChanges.WithLabelValues("unlike").Inc()
	middleware.Logger.InfoContext(ctx, "film unliked",
		slog.Uint64("film_id", uint64(filmID)),
		slog.Uint64("user_id", uint64(userID)),
	)
	return nil
}

// PopularFilmIDs ranks the films matching the query by like count, most liked first,
// breaking ties by ascending id.
func (s *RankingService) PopularFilmIDs(ctx context.Context, q PopularQuery) (ids []uint, err error) {
	span, ctx := observability.NewSpan(ctx, "RankingService.PopularFilmIDs", attribute.Int("limit", q.Limit))
	defer span.EndWith(&err)
	defer observability.TrackRanking("popular")()

	candidates, err := s.filmRepo.MatchingFilter(ctx, repository.FilmFilter{GenreID: q.GenreID, Year: q.Year})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []uint{}, nil
	}

	counts, err := s.likeRepo.LikeCountByFilm(ctx, candidates)
	if err != nil {
		return nil, err
	}

	ranked := rankByCount(candidates, counts)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	return ranked, nil
}

// PopularFilms is PopularFilmIDs hydrated to films, each carrying its like count.
func (s *RankingService) PopularFilms(ctx context.Context, q PopularQuery) ([]models.Film, error) {
	ids, err := s.PopularFilmIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, ids)
}

// RecommendFor returns the films liked by the user sharing the most likes with userID
// that userID has not liked, ascending. Ties between candidates go to the lowest user id.
// With no overlapping user the result is empty.
func (s *RankingService) RecommendFor(ctx context.Context, userID uint) (ids []uint, err error) {
	span, ctx := observability.NewSpan(ctx, "RankingService.RecommendFor", observability.UserAttr("user.id", userID))
	defer span.EndWith(&err)
	defer observability.TrackRanking("recommend")()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	ids = []uint{}
	err = s.likeRepo.WithinTx(ctx, func(tx repository.LikeRepository) error {
		shared, err := tx.SharedLikeCounts(ctx, userID)
		if err != nil {
			return err
		}
		nearest, ok := nearestUser(shared)
		if !ok {
			return nil
		}
		span.AddAttributes(observability.UserAttr("nearest.id", nearest))

		theirs, err := tx.LikesByUser(ctx, nearest)
		if err != nil {
			return err
		}
		mine, err := tx.LikesByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids = difference(theirs, mine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Recommendations is RecommendFor hydrated to films.
func (s *RankingService) Recommendations(ctx context.Context, userID uint) ([]models.Film, error) {
	ids, err := s.RecommendFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, ids)
}

// CommonFilms returns the films liked by both users, most liked first, ties by ascending id.
func (s *RankingService) CommonFilms(ctx context.Context, userID, friendID uint) (films []models.Film, err error) {
	span, ctx := observability.NewSpan(ctx, "RankingService.CommonFilms",
		observability.UserAttr("user.id", userID), observability.UserAttr("friend.id", friendID))
	defer span.EndWith(&err)
	defer observability.TrackRanking("common")()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, friendID); err != nil {
		return nil, err
	}

	var ranked []uint
	err = s.likeRepo.WithinTx(ctx, func(tx repository.LikeRepository) error {
		mine, err := tx.LikesByUser(ctx, userID)
		if err != nil {
			return err
		}
		theirs, err := tx.LikesByUser(ctx, friendID)
		if err != nil {
			return err
		}
		common := intersect(mine, theirs)
		counts, err := tx.LikeCountByFilm(ctx, common)
		if err != nil {
			return err
		}
		ranked = rankByCount(common, counts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, ranked)
}

func (s *RankingService) hydrate(ctx context.Context, ids []uint) ([]models.Film, error) {
	if len(ids) == 0 {
		return []models.Film{}, nil
	}
	films, err := s.filmRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.likeRepo.LikeCountByFilm(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range films {
		films[i].LikesCount = counts[films[i].ID]
	}
	return films, nil
}

// rankByCount orders ids by descending count, then ascending id.
func rankByCount(ids []uint, counts map[uint]int) []uint {
	ranked := make([]uint, len(ids))
	copy(ranked, ids)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// nearestUser picks the user with the highest shared count, lowest id on ties.
func nearestUser(shared map[uint]int) (uint, bool) {
	var best uint
	bestCount := 0
	for id, count := range shared {
		if count <= 0 {
			continue
		}
		if count > bestCount || (count == bestCount && id < best) {
			best, bestCount = id, count
		}
	}
	return best, bestCount > 0
}
