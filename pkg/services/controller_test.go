package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesFor(entryID string, quality data.Quality) []string {
	return []string{
		"https://cdn.example.org/" + string(quality) + "/hash-" + entryID + "/1.png",
		"https://cdn.example.org/" + string(quality) + "/hash-" + entryID + "/2.png",
	}
}

func newMangaController(t *testing.T) (*Controller, *mockSource, *atomic.Int32) {
	t.Helper()
	var feedCalls atomic.Int32
	src := &mockSource{
		kind: data.KindManga,
		getDetailFunc: func(id string) (data.MediaItem, error) {
			if id != "berserk" {
				return data.MediaItem{}, sources.ErrNotFound
			}
			return data.MediaItem{ID: id, Kind: data.KindManga, Title: "Berserk"}, nil
		},
		getFeedFunc: func(id string) (data.Feed, error) {
			feedCalls.Add(1)
			return chapterFeed(id, "c3", "c2", "c1"), nil
		},
		getPlayableFunc: func(_, entryID string, quality data.Quality) ([]string, error) {
			return pagesFor(entryID, quality), nil
		},
	}
	lib := data.NewLibrary(data.NewMemoryStore())
	return NewController(lib, ControllerOptions{TopLimit: 10}, src), src, &feedCalls
}

func TestControllerLoadDetail(t *testing.T) {
	c, _, _ := newMangaController(t)

	view, err := c.LoadDetail(context.Background(), data.KindManga, "berserk")
	require.NoError(t, err)

	assert.Equal(t, "Berserk", view.Item.Title)
	assert.Len(t, view.Feed.Entries, 3)
	assert.False(t, view.IsFavorite)
	assert.Equal(t, "☆ Add to favorites", view.FavoriteLabel())
	assert.Equal(t, "c1", view.First.MustGet().ID)
	assert.True(t, view.Continue.IsAbsent())
	assert.Equal(t, "Berserk", c.Library().CurrentTitle())
}

func TestControllerLoadDetailNotFound(t *testing.T) {
	c, _, _ := newMangaController(t)

	_, err := c.LoadDetail(context.Background(), data.KindManga, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sources.ErrNotFound))
	assert.Equal(t, "This title could not be found.", UserMessage(err))
}

func TestControllerLoadDetailKeepsItemWhenFeedFails(t *testing.T) {
	c, src, _ := newMangaController(t)
	src.getFeedFunc = func(string) (data.Feed, error) {
		return data.Feed{}, &sources.CatalogError{Op: "feed", Message: "Couldn't load the episode list.", Err: errors.New("boom")}
	}

	view, err := c.LoadDetail(context.Background(), data.KindManga, "berserk")
	require.NoError(t, err)
	assert.Equal(t, "Berserk", view.Item.Title)
	assert.Empty(t, view.Feed.Entries)
	assert.True(t, view.First.IsAbsent())
	assert.Equal(t, "Couldn't load the episode list.", view.Message)
}

func TestControllerOpenEntryRecordsProgress(t *testing.T) {
	c, _, feedCalls := newMangaController(t)
	ctx := context.Background()

	_, err := c.LoadDetail(ctx, data.KindManga, "berserk")
	require.NoError(t, err)

	view, err := c.OpenEntry(ctx, data.KindManga, "berserk", "c2")
	require.NoError(t, err)

	assert.Equal(t, "Berserk — Ch. c2", view.Heading())
	assert.Equal(t, "c1", view.Adjacent.Previous.MustGet().ID)
	assert.Equal(t, "c3", view.Adjacent.Next.MustGet().ID)
	assert.Equal(t, pagesFor("c2", data.QualityData), view.URLs)
	assert.Equal(t, int32(1), feedCalls.Load(), "feed is cached for the session")

	last, ok := c.Library().LastPosition(data.KindManga)
	require.True(t, ok)
	assert.Equal(t, "c2", last.EntryID)

	history := c.History(data.KindManga)
	require.Len(t, history, 1)
	assert.Equal(t, "Berserk", history[0].Title)
	assert.Equal(t, "Ch. c2", history[0].Label)

	detail, err := c.LoadDetail(ctx, data.KindManga, "berserk")
	require.NoError(t, err)
	assert.Equal(t, "c2", detail.Continue.MustGet().ID)
}

func TestControllerOpenEntryWithoutDetailLooksUpTitle(t *testing.T) {
	c, _, _ := newMangaController(t)

	view, err := c.OpenEntry(context.Background(), data.KindManga, "berserk", "c3")
	require.NoError(t, err)
	assert.Equal(t, "Berserk", view.MediaTitle)
	assert.True(t, view.Adjacent.Next.IsAbsent())
}

func TestControllerOpenEntryUnknownEntry(t *testing.T) {
	c, _, _ := newMangaController(t)

	_, err := c.OpenEntry(context.Background(), data.KindManga, "berserk", "c99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Episode or chapter not found.", UserMessage(err))

	_, ok := c.Library().LastPosition(data.KindManga)
	assert.False(t, ok)
}

func TestControllerQualityToggleOnlyChangesQualitySegment(t *testing.T) {
	c, _, _ := newMangaController(t)
	ctx := context.Background()

	before, err := c.OpenEntry(ctx, data.KindManga, "berserk", "c1")
	require.NoError(t, err)

	q, err := c.ToggleQuality()
	require.NoError(t, err)
	assert.Equal(t, data.QualityDataSaver, q)
	assert.Equal(t, data.QualityDataSaver, c.Library().Quality())

	after, err := c.OpenEntry(ctx, data.KindManga, "berserk", "c1")
	require.NoError(t, err)
	assert.Equal(t, data.QualityDataSaver, after.Quality)

	require.Len(t, after.URLs, len(before.URLs))
	for i := range before.URLs {
		assert.Equal(t,
			strings.Replace(before.URLs[i], "/data/", "/data-saver/", 1),
			after.URLs[i])
	}
}

func TestControllerContinue(t *testing.T) {
	c, _, _ := newMangaController(t)
	ctx := context.Background()

	_, err := c.Continue(ctx, data.KindManga)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNothingToContinue))
	assert.Equal(t, "You haven't read anything yet", UserMessage(err))

	_, err = c.OpenEntry(ctx, data.KindManga, "berserk", "c2")
	require.NoError(t, err)

	view, err := c.Continue(ctx, data.KindManga)
	require.NoError(t, err)
	assert.Equal(t, "c2", view.Entry.ID)
}

func TestControllerContinueAnimeMessage(t *testing.T) {
	c := NewController(data.NewLibrary(data.NewMemoryStore()), ControllerOptions{}, &mockSource{kind: data.KindAnime})

	_, err := c.Continue(context.Background(), data.KindAnime)
	assert.Equal(t, "You haven't watched anything yet", UserMessage(err))
}

func TestControllerToggleFavorite(t *testing.T) {
	c, _, _ := newMangaController(t)

	on, err := c.ToggleFavorite(data.KindManga, "berserk")
	require.NoError(t, err)
	assert.True(t, on)

	view, err := c.LoadDetail(context.Background(), data.KindManga, "berserk")
	require.NoError(t, err)
	assert.True(t, view.IsFavorite)
	assert.Equal(t, "★ Remove from favorites", view.FavoriteLabel())

	off, err := c.ToggleFavorite(data.KindManga, "berserk")
	require.NoError(t, err)
	assert.False(t, off)
}

func TestControllerAnimeEpisodes(t *testing.T) {
	src := &mockSource{
		kind: data.KindAnime,
		getDetailFunc: func(id string) (data.MediaItem, error) {
			return data.MediaItem{ID: id, Kind: data.KindAnime, Title: "Naruto"}, nil
		},
		getFeedFunc: func(id string) (data.Feed, error) { return episodeFeed(id, 3), nil },
		getPlayableFunc: func(_, entryID string, _ data.Quality) ([]string, error) {
			return []string{"https://stream.example.org/" + entryID}, nil
		},
	}
	c := NewController(data.NewLibrary(data.NewMemoryStore()), ControllerOptions{}, src)
	ctx := context.Background()

	detail, err := c.LoadDetail(ctx, data.KindAnime, "20")
	require.NoError(t, err)
	assert.Equal(t, "1", detail.First.MustGet().ID)

	view, err := c.OpenEntry(ctx, data.KindAnime, "20", "1")
	require.NoError(t, err)
	assert.Equal(t, "Naruto — Ep 1", view.Heading())
	assert.True(t, view.Adjacent.Previous.IsAbsent())
	assert.Equal(t, "2", view.Adjacent.Next.MustGet().ID)
	assert.Equal(t, []string{"https://stream.example.org/1"}, view.URLs)
}

func TestControllerHomeAndKinds(t *testing.T) {
	anime := &mockSource{kind: data.KindAnime, listFunc: func(sources.SortOrder) ([]data.MediaItem, error) {
		return catalogOf(2), nil
	}}
	manga := &mockSource{kind: data.KindManga}
	c := NewController(data.NewLibrary(data.NewMemoryStore()), ControllerOptions{}, manga, anime)

	assert.Equal(t, []data.MediaKind{data.KindAnime, data.KindManga}, c.Kinds())
	assert.Equal(t, 2, c.Home(context.Background(), data.KindAnime).Count)

	empty := NewController(data.NewLibrary(data.NewMemoryStore()), ControllerOptions{})
	assert.NotEmpty(t, empty.Home(context.Background(), data.KindManga).Message)
}
