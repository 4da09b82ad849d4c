package services

import (
	"context"
	"strconv"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/sources"
)

type mockSource struct {
	kind            data.MediaKind
	searchFunc      func(term string, sort sources.SortOrder) ([]data.MediaItem, error)
	listFunc        func(sort sources.SortOrder) ([]data.MediaItem, error)
	listByIDsFunc   func(ids []string) ([]data.MediaItem, error)
	getDetailFunc   func(id string) (data.MediaItem, error)
	getFeedFunc     func(id string) (data.Feed, error)
	getEntryFunc    func(mediaID, entryID string) (data.Entry, error)
	getPlayableFunc func(mediaID, entryID string, quality data.Quality) ([]string, error)
}

func (m *mockSource) Kind() data.MediaKind {
	if m.kind == "" {
		return data.KindManga
	}
	return m.kind
}

func (m *mockSource) Search(_ context.Context, term string, sort sources.SortOrder) ([]data.MediaItem, error) {
	if m.searchFunc != nil {
		return m.searchFunc(term, sort)
	}
	return nil, nil
}

func (m *mockSource) List(_ context.Context, sort sources.SortOrder) ([]data.MediaItem, error) {
	if m.listFunc != nil {
		return m.listFunc(sort)
	}
	return nil, nil
}

func (m *mockSource) ListByIDs(_ context.Context, ids []string) ([]data.MediaItem, error) {
	if m.listByIDsFunc != nil {
		return m.listByIDsFunc(ids)
	}
	return nil, nil
}

func (m *mockSource) GetDetail(_ context.Context, id string) (data.MediaItem, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(id)
	}
	return data.MediaItem{ID: id, Kind: m.Kind(), Title: "Title " + id}, nil
}

func (m *mockSource) GetFeed(_ context.Context, id string) (data.Feed, error) {
	if m.getFeedFunc != nil {
		return m.getFeedFunc(id)
	}
	return data.Feed{MediaID: id, Kind: m.Kind()}, nil
}

func (m *mockSource) GetEntry(_ context.Context, mediaID, entryID string) (data.Entry, error) {
	if m.getEntryFunc != nil {
		return m.getEntryFunc(mediaID, entryID)
	}
	return data.Entry{ID: entryID, MediaID: mediaID}, nil
}

func (m *mockSource) GetPlayable(_ context.Context, mediaID, entryID string, quality data.Quality) ([]string, error) {
	if m.getPlayableFunc != nil {
		return m.getPlayableFunc(mediaID, entryID, quality)
	}
	return nil, nil
}

func chapterFeed(mediaID string, ids ...string) data.Feed {
	feed := data.Feed{MediaID: mediaID, Kind: data.KindManga, Order: data.Descending}
	for _, id := range ids {
		feed.Entries = append(feed.Entries, data.Entry{ID: id, MediaID: mediaID, Chapter: id, Pages: 10})
	}
	return feed
}

func episodeFeed(mediaID string, n int) data.Feed {
	feed := data.Feed{MediaID: mediaID, Kind: data.KindAnime, Order: data.Ascending}
	for i := 1; i <= n; i++ {
		feed.Entries = append(feed.Entries, data.Entry{
			ID:      strconv.Itoa(i),
			MediaID: mediaID,
			N:       i,
			Source:  "https://stream.example.org/" + strconv.Itoa(i),
		})
	}
	return feed
}
