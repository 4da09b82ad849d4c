package screens

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	searches []string
}

func (f *fakeSource) Kind() data.MediaKind { return data.KindManga }

func (f *fakeSource) Search(_ context.Context, term string, _ sources.SortOrder) ([]data.MediaItem, error) {
	f.mu.Lock()
	f.searches = append(f.searches, term)
	f.mu.Unlock()
	return []data.MediaItem{{ID: "berserk", Title: "Berserk", Status: "releasing"}}, nil
}

func (f *fakeSource) List(context.Context, sources.SortOrder) ([]data.MediaItem, error) {
	return []data.MediaItem{
		{ID: "berserk", Title: "Berserk", Status: "releasing"},
		{ID: "vagabond", Title: "Vagabond", Status: "hiatus"},
	}, nil
}

func (f *fakeSource) ListByIDs(context.Context, []string) ([]data.MediaItem, error) {
	return nil, nil
}

func (f *fakeSource) GetDetail(_ context.Context, id string) (data.MediaItem, error) {
	return data.MediaItem{ID: id, Kind: data.KindManga, Title: "Berserk"}, nil
}

func (f *fakeSource) GetFeed(_ context.Context, id string) (data.Feed, error) {
	feed := data.Feed{MediaID: id, Kind: data.KindManga, Order: data.Descending}
	for _, n := range []string{"3", "2", "1"} {
		feed.Entries = append(feed.Entries, data.Entry{ID: "c" + n, MediaID: id, Chapter: n})
	}
	return feed, nil
}

func (f *fakeSource) GetEntry(_ context.Context, mediaID, entryID string) (data.Entry, error) {
	return data.Entry{ID: entryID, MediaID: mediaID}, nil
}

func (f *fakeSource) GetPlayable(_ context.Context, _, entryID string, quality data.Quality) ([]string, error) {
	return []string{
		"https://cdn.example.org/" + string(quality) + "/" + entryID + "/1.png",
		"https://cdn.example.org/" + string(quality) + "/" + entryID + "/2.png",
	}, nil
}

func newTestController() (*services.Controller, *fakeSource) {
	src := &fakeSource{}
	return services.NewController(data.NewLibrary(data.NewMemoryStore()), services.ControllerOptions{}, src), src
}

// run executes cmd and every command it batches, returning the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func typeText(s *BrowseScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBrowseDebounceDropsStaleTicks(t *testing.T) {
	c, src := newTestController()
	s := NewBrowseScreen(context.Background(), c, data.KindManga, 0)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	typeText(s, "ber")
	require.Equal(t, 3, s.seq)

	_, cmd := s.Update(searchTickMsg{kind: data.KindManga, seq: 1, term: "b"})
	assert.Nil(t, cmd)

	_, cmd = s.Update(searchTickMsg{kind: data.KindManga, seq: 3, term: "ber"})
	vm := find[viewModelMsg](t, run(cmd))
	assert.Equal(t, []string{"ber"}, src.searches)

	s.Update(vm)
	assert.False(t, s.loading)
	assert.Equal(t, 1, len(s.list.Items))
	assert.Contains(t, s.View(), "Berserk")
}

func TestBrowseDropsSupersededResults(t *testing.T) {
	c, _ := newTestController()
	s := NewBrowseScreen(context.Background(), c, data.KindManga, 0)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	s.Update(find[viewModelMsg](t, run(s.refresh)))
	require.Len(t, s.list.Items, 2)

	c.Browser(data.KindManga).SetSearchTerm(context.Background(), "vaga")

	stale := services.ViewModel{
		State: services.BrowserState{Kind: data.KindManga, Tab: services.TabAll},
		Items: []data.MediaItem{{ID: "old"}},
		Count: 1,
	}
	s.Update(viewModelMsg{kind: data.KindManga, vm: stale})
	assert.Len(t, s.list.Items, 2, "result for an older term is ignored")
}

func TestBrowseTabCycle(t *testing.T) {
	c, _ := newTestController()
	s := NewBrowseScreen(context.Background(), c, data.KindManga, 0)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	press := func(key tea.KeyType) services.ViewModel {
		_, cmd := s.Update(tea.KeyMsg{Type: key})
		msg := find[viewModelMsg](t, run(cmd))
		s.Update(msg)
		return msg.vm
	}

	vm := press(tea.KeyTab)
	assert.Equal(t, services.TabTop, vm.State.Tab)
	assert.Contains(t, s.View(), "Top")

	press(tea.KeyShiftTab)
	vm = press(tea.KeyShiftTab)
	assert.Equal(t, services.TabFav, vm.State.Tab)
	assert.Equal(t, "No favorites yet.", s.list.Empty)
}

func TestBrowseEnterOpensDetails(t *testing.T) {
	c, _ := newTestController()
	s := NewBrowseScreen(context.Background(), c, data.KindManga, 0)
	s.Update(find[viewModelMsg](t, run(s.refresh)))

	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, s.Typing())

	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := find[SwitchScreenMsg](t, run(cmd))
	assert.Equal(t, screenDetails, msg.Screen)
	assert.Equal(t, mediaRef{Kind: data.KindManga, MediaID: "vagabond"}, msg.Data)
}

func TestReaderNavigationAndQuality(t *testing.T) {
	c, _ := newTestController()
	ctx := context.Background()
	s := NewReaderScreen(ctx, c, entryRef{Kind: data.KindManga, MediaID: "berserk", EntryID: "c1"})
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	s.Update(find[readerLoadedMsg](t, run(s.Init())))
	require.NotNil(t, s.view)
	assert.Equal(t, "Berserk — Ch. 1", s.view.Heading())

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Nil(t, cmd, "no previous chapter before the first one")

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	s.Update(find[readerLoadedMsg](t, run(cmd)))
	assert.Equal(t, "c2", s.view.Entry.ID)
	assert.Contains(t, s.View(), "Page 1/2")

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	_, cmd = s.Update(find[qualityToggledMsg](t, run(cmd)))
	s.Update(find[readerLoadedMsg](t, run(cmd)))
	assert.Equal(t, data.QualityDataSaver, s.view.Quality)
	assert.Equal(t, "c2", s.view.Entry.ID)
	assert.True(t, strings.Contains(s.view.URLs[0], "/data-saver/c2/"))
}

func TestContinueWithoutHistory(t *testing.T) {
	c, _ := newTestController()
	s := NewContinueScreen(context.Background(), c, data.KindManga)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	s.Update(find[readerLoadedMsg](t, run(s.Init())))
	assert.Nil(t, s.view)
	assert.Contains(t, s.View(), "You haven't read anything yet")
}

func TestRootSwitchesScreens(t *testing.T) {
	c, _ := newTestController()
	r := NewRootScreen(context.Background(), c, RootOptions{})
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := r.Update(SwitchScreenMsg{Screen: screenDetails, Data: mediaRef{Kind: data.KindManga, MediaID: "berserk"}})
	require.Equal(t, detailsView, r.currentView)

	r.Update(find[detailsLoadedMsg](t, run(cmd)))
	view := r.View()
	assert.Contains(t, view, "Berserk")
	assert.Contains(t, view, "Chapters (3 total):")

	_, cmd = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	r.Update(find[favoriteToggledMsg](t, run(cmd)))
	assert.True(t, c.Library().IsFavorite(data.KindManga, "berserk"))

	_, cmd = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
