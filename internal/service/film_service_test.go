package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/utils"
)

type stubArchive struct {
	films []model.Film
	err   error
}

func (s stubArchive) Films(ctx context.Context) ([]model.Film, error) {
	return s.films, s.err
}

type stubFeed struct {
	films []model.Film
	err   error
	calls atomic.Int32
}

func (s *stubFeed) Recent(ctx context.Context) ([]model.Film, error) {
	s.calls.Add(1)
	return s.films, s.err
}

// stubEnricher 给每条记录填上固定海报，并记录收到的条数
type stubEnricher struct {
	seen int
}

func (s *stubEnricher) Enrich(ctx context.Context, films []model.Film) []model.Film {
	s.seen = len(films)
	out := append([]model.Film(nil), films...)
	for i := range out {
		if out[i].PosterURL == "" && out[i].HasPermalink() {
			out[i].PosterURL = "https://img/" + out[i].Title + ".jpg"
		}
	}
	return out
}

func newTestFilmService(t *testing.T, archive ArchiveSource, feed FeedSource, enricher Enricher) *FilmService {
	t.Helper()
	return NewFilmService(archive, feed, newTestMerger(t, FieldMergePolicy{}), enricher)
}

func TestGetAllFilmsEndToEnd(t *testing.T) {
	loc := newYork(t)
	archive := stubArchive{films: []model.Film{
		{Title: "Heat", Year: "1995", Permalink: model.Sentinel, WatchedAt: utils.ParseDate("2020-05-01", loc)},
		{Title: "Alien", Year: "1979", Permalink: model.Sentinel, WatchedAt: utils.ParseDate("2019-10-31", loc)},
	}}
	feed := &stubFeed{films: []model.Film{
		{Title: "Past Lives", Year: "2023", Permalink: "https://x/past-lives", WatchedAt: at(t, "2023-06-10T02:00:00Z")},
		{Title: "Heat", Year: "1995", Permalink: "https://x/heat", Rating: "★★★★★", WatchedAt: at(t, "2020-05-01T12:00:00Z")},
	}}
	enricher := &stubEnricher{}

	films := newTestFilmService(t, archive, feed, enricher).GetAllFilms(context.Background(), 2)
	require.Len(t, films, 2)
	assert.Equal(t, 2, enricher.seen)

	assert.Equal(t, "Past Lives", films[0].Title)
	assert.Equal(t, "https://img/Past Lives.jpg", films[0].PosterURL)

	heat := films[1]
	assert.Equal(t, "Heat", heat.Title)
	assert.Equal(t, "https://x/heat", heat.Permalink)
	assert.Equal(t, "★★★★★", heat.Rating)
}

func TestGetAllFilmsNonPositiveLimit(t *testing.T) {
	feed := &stubFeed{films: []model.Film{{Title: "Heat", Permalink: "https://x/heat"}}}
	svc := newTestFilmService(t, stubArchive{}, feed, nil)

	films := svc.GetAllFilms(context.Background(), 0)
	require.NotNil(t, films)
	assert.Empty(t, films)
	assert.Empty(t, svc.GetAllFilms(context.Background(), -3))
	assert.Equal(t, int32(0), feed.calls.Load())
}

func TestGetAllFilmsSourceFailures(t *testing.T) {
	archive := stubArchive{films: []model.Film{{Title: "Alien", Year: "1979", Permalink: model.Sentinel}}}
	feed := &stubFeed{err: errors.New("boom")}

	films := newTestFilmService(t, archive, feed, nil).GetAllFilms(context.Background(), 10)
	require.Len(t, films, 1)
	assert.Equal(t, "Alien", films[0].Title)

	both := newTestFilmService(t, stubArchive{err: errors.New("disk")}, feed, nil)
	assert.Empty(t, both.GetAllFilms(context.Background(), 10))
}

func TestRecentAndLatest(t *testing.T) {
	feed := &stubFeed{films: []model.Film{
		{Title: "Monster", Permalink: "https://x/monster", WatchedAt: at(t, "2024-01-05T15:00:00Z")},
		{Title: "Perfect Days", Permalink: "https://x/perfect-days", WatchedAt: at(t, "2024-01-01T15:00:00Z")},
	}}
	svc := newTestFilmService(t, nil, feed, nil)

	assert.Len(t, svc.RecentFilms(context.Background(), 8), 2)
	assert.Len(t, svc.RecentFilms(context.Background(), 1), 1)

	latest, ok := svc.LatestFilm(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Monster", latest.Title)

	empty := newTestFilmService(t, nil, &stubFeed{err: errors.New("down")}, nil)
	_, ok = empty.LatestFilm(context.Background())
	assert.False(t, ok)
}

func TestRefreshServiceRunsImmediately(t *testing.T) {
	feed := &stubFeed{}
	svc := newTestFilmService(t, nil, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewRefreshService(svc, 10, time.Hour).Start(ctx)

	assert.Eventually(t, func() bool { return feed.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
}

func TestRefreshServiceDisabled(t *testing.T) {
	feed := &stubFeed{}
	svc := newTestFilmService(t, nil, feed, nil)

	NewRefreshService(svc, 10, 0).Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), feed.calls.Load())
}
