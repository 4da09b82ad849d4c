package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
)

const (
	screenBrowse   = "browse"
	screenDetails  = "details"
	screenReader   = "reader"
	screenContinue = "continue"
	screenHistory  = "history"
)

// SwitchScreenMsg asks the root screen to show another view.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

type mediaRef struct {
	Kind    data.MediaKind
	MediaID string
}

type entryRef struct {
	Kind    data.MediaKind
	MediaID string
	EntryID string
}

type switchKindMsg struct{}

// searchTickMsg fires once the debounce delay after a keystroke has passed.
// Only the tick carrying the latest seq triggers a search.
type searchTickMsg struct {
	kind data.MediaKind
	seq  int
	term string
}

type viewModelMsg struct {
	kind data.MediaKind
	vm   services.ViewModel
}

type detailsLoadedMsg struct {
	view services.DetailView
	err  error
}

type favoriteToggledMsg struct {
	on  bool
	err error
}

type readerLoadedMsg struct {
	view services.ReaderView
	err  error
}

type qualityToggledMsg struct {
	quality data.Quality
	err     error
}

type historyLoadedMsg struct {
	entries []data.HistoryEntry
}

func switchTo(screen string, payload interface{}) tea.Cmd {
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: screen, Data: payload}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func kindIcon(kind data.MediaKind) string {
	if kind == data.KindAnime {
		return "📺"
	}
	return "📖"
}

func kindName(kind data.MediaKind) string {
	if kind == data.KindAnime {
		return "Anime"
	}
	return "Manga"
}
