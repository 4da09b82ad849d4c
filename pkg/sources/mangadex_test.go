package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const narutoID = "6b1eb93e-473a-4ab3-9922-1a66d2a29a4a"

const narutoManga = `{
  "id": "6b1eb93e-473a-4ab3-9922-1a66d2a29a4a",
  "type": "manga",
  "attributes": {
    "title": {"en": "Naruto"},
    "altTitles": [{"ja": "NARUTO -ナルト-"}, {"pt-br": "Naruto"}],
    "description": {"en": "<p>Before Naruto's birth...</p>"},
    "status": "completed",
    "year": 1999,
    "tags": [
      {"attributes": {"name": {"en": "Action"}, "group": "genre"}},
      {"attributes": {"name": {"en": "Ninja"}, "group": "theme"}},
      {"attributes": {"name": {"en": "Long Strip"}, "group": "format"}}
    ]
  },
  "relationships": [
    {"id": "a1", "type": "author", "attributes": {"name": "Kishimoto Masashi"}},
    {"id": "c1", "type": "cover_art", "attributes": {"fileName": "cover.jpg"}}
  ]
}`

const untitledManga = `{
  "id": "m2",
  "type": "manga",
  "attributes": {"title": {}, "altTitles": [{"ko": "제목"}], "status": ""},
  "relationships": []
}`

const mangaListBody = `{"result": "ok", "data": [` + narutoManga + `,` + untitledManga + `]}`

const feedBody = `{
  "result": "ok",
  "data": [
    {"id": "ch3", "attributes": {"chapter": "3", "volume": "1", "title": "", "translatedLanguage": "en", "pages": 20}},
    {"id": "ch2.5", "attributes": {"chapter": "2.5", "volume": "1", "title": "Extra", "translatedLanguage": "en", "pages": 0}},
    {"id": "ch2", "attributes": {"chapter": "2", "volume": "1", "title": "Konohamaru", "translatedLanguage": "en", "pages": 18}},
    {"id": "ch1", "attributes": {"chapter": "1", "volume": "1", "title": "Uzumaki Naruto!", "translatedLanguage": "en", "pages": 53}}
  ]
}`

const atHomeBody = `{
  "result": "ok",
  "baseUrl": "https://cdn.example.org",
  "chapter": {
    "hash": "abc123",
    "data": ["1-full.png", "2-full.png", "10-full.png"],
    "dataSaver": ["1-small.jpg", "2-small.jpg", "10-small.jpg"]
  }
}`

type mangaDexFixture struct {
	t      *testing.T
	server *httptest.Server
	routes map[string]string
	broken map[string]bool

	mu       sync.Mutex
	requests []*http.Request
}

func newMangaDexFixture(t *testing.T) (*MangaDex, *mangaDexFixture) {
	t.Helper()
	fx := &mangaDexFixture{t: t, routes: map[string]string{
		"/manga":                        mangaListBody,
		"/manga/" + narutoID:            `{"result":"ok","data":` + narutoManga + `}`,
		"/manga/" + narutoID + "/feed":  feedBody,
		"/statistics/manga/" + narutoID: `{"result":"ok","statistics":{"` + narutoID + `":{"rating":{"average":8.4,"bayesian":8.1}}}}`,
		"/chapter/ch1":                  `{"result":"ok","data":{"id":"ch1","attributes":{"chapter":"1","volume":"1","title":"Uzumaki Naruto!","translatedLanguage":"en","pages":53},"relationships":[{"id":"` + narutoID + `","type":"manga"}]}}`,
		"/at-home/server/ch1":           atHomeBody,
	}, broken: map[string]bool{}}
	fx.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fx.mu.Lock()
		fx.requests = append(fx.requests, r)
		body, ok := fx.routes[r.URL.Path]
		broken := fx.broken[r.URL.Path]
		fx.mu.Unlock()
		if broken {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"result":"error","errors":[{"status":404}]}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(fx.server.Close)

	proxies, err := utils.ProxiesByName([]string{"direct"})
	require.NoError(t, err)
	fetcher := utils.NewFetcher(utils.FetcherOptions{
		Proxies: proxies,
		Backoff: func(int) time.Duration { return 0 },
	})
	md := NewMangaDex(fetcher, MangaDexConfig{
		BaseURL:    fx.server.URL,
		UploadsURL: "https://uploads.example.org",
		Options:    Options{PageSize: 24, GenreLimit: 5},
	})
	return md, fx
}

func (fx *mangaDexFixture) last() *http.Request {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	require.NotEmpty(fx.t, fx.requests)
	return fx.requests[len(fx.requests)-1]
}

func (fx *mangaDexFixture) hits(path string) int {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	n := 0
	for _, r := range fx.requests {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

func (fx *mangaDexFixture) count() int {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return len(fx.requests)
}

func TestMangaDex_List(t *testing.T) {
	md, fx := newMangaDexFixture(t)

	items, err := md.List(context.Background(), SortScore)
	require.NoError(t, err)
	require.Len(t, items, 2)

	naruto := items[0]
	assert.Equal(t, narutoID, naruto.ID)
	assert.Equal(t, data.KindManga, naruto.Kind)
	assert.Equal(t, "Naruto", naruto.Title)
	assert.Equal(t, "https://uploads.example.org/covers/"+narutoID+"/cover.jpg.512.jpg", naruto.Cover)
	assert.Equal(t, 1999, naruto.Year)
	assert.Equal(t, "completed", naruto.Status)
	assert.Equal(t, []string{"Action", "Ninja"}, naruto.Genres)
	assert.Equal(t, []string{"Kishimoto Masashi"}, naruto.Authors)
	assert.Equal(t, "Before Naruto's birth...", naruto.Description)

	assert.Equal(t, "제목", items[1].Title)
	assert.Equal(t, "unknown", items[1].Status)
	assert.Empty(t, items[1].Cover)

	q := fx.last().URL.Query()
	assert.Equal(t, "24", q.Get("limit"))
	assert.Equal(t, "desc", q.Get("order[rating]"))
	assert.ElementsMatch(t, []string{"cover_art", "author"}, q["includes[]"])
}

func TestMangaDex_SearchSendsTitle(t *testing.T) {
	md, fx := newMangaDexFixture(t)

	_, err := md.Search(context.Background(), "  naruto ", SortPopular)
	require.NoError(t, err)

	q := fx.last().URL.Query()
	assert.Equal(t, "naruto", q.Get("title"))
	assert.Equal(t, "desc", q.Get("order[followedCount]"))
}

func TestMangaDex_ListByIDsKeepsFavoriteOrder(t *testing.T) {
	md, fx := newMangaDexFixture(t)

	items, err := md.ListByIDs(context.Background(), []string{"m2", "gone", narutoID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "m2", items[0].ID)
	assert.Equal(t, narutoID, items[1].ID)
	assert.Equal(t, []string{"m2", "gone", narutoID}, fx.last().URL.Query()["ids[]"])

	before := fx.count()
	items, err = md.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, before, fx.count())
}

func TestMangaDex_GetDetailIncludesScore(t *testing.T) {
	md, _ := newMangaDexFixture(t)

	item, err := md.GetDetail(context.Background(), narutoID)
	require.NoError(t, err)
	assert.Equal(t, "Naruto", item.Title)
	assert.Equal(t, 8.1, item.Score.OrEmpty())
}

func TestMangaDex_GetDetailWithoutStatistics(t *testing.T) {
	md, fx := newMangaDexFixture(t)
	fx.mu.Lock()
	delete(fx.routes, "/statistics/manga/"+narutoID)
	fx.mu.Unlock()

	item, err := md.GetDetail(context.Background(), narutoID)
	require.NoError(t, err)
	assert.True(t, item.Score.IsAbsent())
}

func TestMangaDex_GetDetailFailureIsCatalogError(t *testing.T) {
	md, fx := newMangaDexFixture(t)
	fx.mu.Lock()
	fx.broken["/manga/"+narutoID] = true
	fx.mu.Unlock()

	_, err := md.GetDetail(context.Background(), narutoID)
	require.Error(t, err)

	var catErr *CatalogError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "detail", catErr.Op)
	assert.NotEmpty(t, catErr.Message)
	assert.ErrorIs(t, err, utils.ErrFetchFailed)
}

func TestMangaDex_GetDetailUnknownIDIsNotFound(t *testing.T) {
	md, fx := newMangaDexFixture(t)

	_, err := md.GetDetail(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var catErr *CatalogError
	assert.False(t, errors.As(err, &catErr))
	assert.Equal(t, 1, fx.hits("/manga/missing"))
}

func TestMangaDex_StatisticsAreFetchedOnce(t *testing.T) {
	_, fx := newMangaDexFixture(t)
	fx.mu.Lock()
	fx.broken["/statistics/manga/"+narutoID] = true
	fx.mu.Unlock()

	proxies, err := utils.ProxiesByName([]string{"direct"})
	require.NoError(t, err)
	var backoffs int
	retrying := utils.NewFetcher(utils.FetcherOptions{
		Proxies: proxies,
		Retries: utils.DefaultRetries,
		Backoff: func(int) time.Duration { backoffs++; return 0 },
	})
	single := utils.NewFetcher(utils.FetcherOptions{Proxies: proxies})
	md := NewMangaDex(retrying, MangaDexConfig{
		BaseURL:    fx.server.URL,
		Statistics: single,
	})

	item, err := md.GetDetail(context.Background(), narutoID)
	require.NoError(t, err)
	assert.Equal(t, "Naruto", item.Title)
	assert.True(t, item.Score.IsAbsent())
	assert.Equal(t, 1, fx.hits("/statistics/manga/"+narutoID))
	assert.Equal(t, 0, backoffs)
}

func TestMangaDex_GetFeedDropsEmptyChapters(t *testing.T) {
	md, fx := newMangaDexFixture(t)

	feed, err := md.GetFeed(context.Background(), narutoID)
	require.NoError(t, err)

	assert.Equal(t, data.Descending, feed.Order)
	assert.Equal(t, narutoID, feed.MediaID)
	ids := make([]string, len(feed.Entries))
	for i, e := range feed.Entries {
		ids[i] = e.ID
		assert.Equal(t, narutoID, e.MediaID)
	}
	assert.Equal(t, []string{"ch3", "ch2", "ch1"}, ids)
	assert.Equal(t, "Vol. 1, Ch. 2", feed.Entries[1].Label())

	q := fx.last().URL.Query()
	assert.Equal(t, []string{"en"}, q["translatedLanguage[]"])
	assert.Equal(t, "desc", q.Get("order[volume]"))
	assert.Equal(t, "desc", q.Get("order[chapter]"))
}

func TestMangaDex_GetEntry(t *testing.T) {
	md, _ := newMangaDexFixture(t)

	entry, err := md.GetEntry(context.Background(), "", "ch1")
	require.NoError(t, err)
	assert.Equal(t, narutoID, entry.MediaID)
	assert.Equal(t, "Uzumaki Naruto!", entry.Title)
	assert.Equal(t, 53, entry.Pages)
}

func TestMangaDex_GetPlayable(t *testing.T) {
	md, _ := newMangaDexFixture(t)

	full, err := md.GetPlayable(context.Background(), narutoID, "ch1", data.QualityData)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.org/data/abc123/1-full.png",
		"https://cdn.example.org/data/abc123/2-full.png",
		"https://cdn.example.org/data/abc123/10-full.png",
	}, full)

	saver, err := md.GetPlayable(context.Background(), narutoID, "ch1", data.QualityDataSaver)
	require.NoError(t, err)
	require.Len(t, saver, len(full))
	for i := range saver {
		assert.True(t, strings.HasPrefix(saver[i], "https://cdn.example.org/data-saver/abc123/"), saver[i])
	}
}
