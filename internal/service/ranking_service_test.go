package service

import (
	"context"
	"testing"

	"cinesocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingService_LikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	film := f.film(t, 2001)

	require.NoError(t, f.rankSv.Like(ctx, film, u))
	require.NoError(t, f.rankSv.Like(ctx, film, u))

	var count int64
	require.NoError(t, f.db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRankingService_LikeNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	film := f.film(t, 2001)

	assert.ErrorIs(t, f.rankSv.Like(ctx, film+100, u), models.ErrNotFound)
	assert.ErrorIs(t, f.rankSv.Like(ctx, film, u+100), models.ErrNotFound)
}

func TestRankingService_Unlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	film := f.film(t, 2001)

	err := f.rankSv.Unlike(ctx, film, u)
	assert.ErrorIs(t, err, models.ErrNoSuchEdge)
	assert.NotErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, f.rankSv.Unlike(ctx, film+100, u), models.ErrNotFound)

	f.like(t, film, u)
	require.NoError(t, f.rankSv.Unlike(ctx, film, u))
	assert.ErrorIs(t, f.rankSv.Unlike(ctx, film, u), models.ErrNoSuchEdge)
}

func TestRankingService_PopularTieBreakByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2, u3 := f.user(t), f.user(t), f.user(t)
	f1, f2, f3 := f.film(t, 2010), f.film(t, 2011), f.film(t, 2012)

	// f3 has fewest likes, f2 and f1 tie
	f.like(t, f3, u1)
	f.like(t, f2, u1, u2, u3)
	f.like(t, f1, u1, u2, u3)

	ids, err := f.rankSv.PopularFilmIDs(ctx, PopularQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint{f1, f2}, ids)

	all, err := f.rankSv.PopularFilmIDs(ctx, PopularQuery{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, []uint{f1, f2, f3}, all)

	negative, err := f.rankSv.PopularFilmIDs(ctx, PopularQuery{Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, all, negative)
}

func TestRankingService_PopularIncludesUnlikedCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	f1, f2, f3 := f.film(t, 2010), f.film(t, 2011), f.film(t, 2012)
	f.like(t, f3, u)

	ids, err := f.rankSv.PopularFilmIDs(ctx, PopularQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{f3, f1, f2}, ids)
}

func TestRankingService_PopularFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	horror := &models.Genre{Name: "Horror"}
	require.NoError(t, f.films.CreateGenre(ctx, horror))

	u1, u2 := f.user(t), f.user(t)
	old := f.film(t, 1980, horror.ID)
	recent := f.film(t, 2020, horror.ID)
	other := f.film(t, 2020)
	f.like(t, recent, u1, u2)
	f.like(t, other, u1, u2)
	f.like(t, old, u1)

	genre := horror.ID
	ids, err := f.rankSv.PopularFilmIDs(ctx, PopularQuery{GenreID: &genre})
	require.NoError(t, err)
	assert.Equal(t, []uint{recent, old}, ids)

	year := 2020
	ids, err = f.rankSv.PopularFilmIDs(ctx, PopularQuery{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, []uint{recent, other}, ids)

	ids, err = f.rankSv.PopularFilmIDs(ctx, PopularQuery{GenreID: &genre, Year: &year})
	require.NoError(t, err)
	assert.Equal(t, []uint{recent}, ids)

	empty := 1900
	ids, err = f.rankSv.PopularFilmIDs(ctx, PopularQuery{Year: &empty})
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	films, err := f.rankSv.PopularFilms(ctx, PopularQuery{Year: &year, Limit: 1})
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, recent, films[0].ID)
	assert.Equal(t, 2, films[0].LikesCount)
}

func TestRankingService_RecommendFromNearestUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v, w := f.user(t), f.user(t), f.user(t)
	films := make([]uint, 7)
	for i := range films {
		films[i] = f.film(t, 2000+i)
	}

	// u shares 3 likes with v and 1 with w
	f.like(t, films[0], u, v, w)
	f.like(t, films[1], u, v)
	f.like(t, films[2], u, v)
	f.like(t, films[3], v)
	f.like(t, films[4], v)
	f.like(t, films[5], w)
	f.like(t, films[6], w)

	ids, err := f.rankSv.RecommendFor(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []uint{films[3], films[4]}, ids)

	liked, err := f.likes.LikesByUser(ctx, u)
	require.NoError(t, err)
	for _, id := range ids {
		assert.NotContains(t, liked, id)
	}

	hydrated, err := f.rankSv.Recommendations(ctx, u)
	require.NoError(t, err)
	require.Len(t, hydrated, 2)
	assert.Equal(t, films[3], hydrated[0].ID)
}

func TestRankingService_RecommendTieGoesToLowestUserID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, low, high := f.user(t), f.user(t), f.user(t)
	shared, lowOnly, highOnly := f.film(t, 2000), f.film(t, 2001), f.film(t, 2002)

	f.like(t, shared, u, low, high)
	f.like(t, lowOnly, low)
	f.like(t, highOnly, high)

	ids, err := f.rankSv.RecommendFor(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []uint{lowOnly}, ids)
}

func TestRankingService_RecommendEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v := f.user(t), f.user(t)
	f1, f2 := f.film(t, 2000), f.film(t, 2001)
	f.like(t, f1, u)
	f.like(t, f2, v)

	ids, err := f.rankSv.RecommendFor(ctx, u)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	// No likes at all
	w := f.user(t)
	ids, err = f.rankSv.RecommendFor(ctx, w)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = f.rankSv.RecommendFor(ctx, w+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRankingService_CommonFilms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v, w := f.user(t), f.user(t), f.user(t)
	f1, f2, f3 := f.film(t, 2000), f.film(t, 2001), f.film(t, 2002)

	f.like(t, f1, u, v)
	f.like(t, f2, u, v, w)
	f.like(t, f3, u)

	films, err := f.rankSv.CommonFilms(ctx, u, v)
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, f2, films[0].ID)
	assert.Equal(t, 3, films[0].LikesCount)
	assert.Equal(t, f1, films[1].ID)

	films, err = f.rankSv.CommonFilms(ctx, v, w+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, films)

	x := f.user(t)
	films, err = f.rankSv.CommonFilms(ctx, u, x)
	require.NoError(t, err)
	assert.Empty(t, films)
}

func TestNearestUser(t *testing.T) {
	tests := []struct {
		name   string
		shared map[uint]int
		want   uint
		ok     bool
	}{
		{"empty", map[uint]int{}, 0, false},
		{"single", map[uint]int{7: 1}, 7, true},
		{"highest count", map[uint]int{2: 1, 9: 3, 4: 2}, 9, true},
		{"tie lowest id", map[uint]int{9: 2, 3: 2, 5: 2}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nearestUser(tt.shared)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
