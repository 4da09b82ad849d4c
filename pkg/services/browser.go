package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/mapper"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/samber/lo"
)

type Tab string

const (
	TabAll Tab = "all"
	TabTop Tab = "top"
	TabNew Tab = "new"
	TabFav Tab = "fav"
)

var Tabs = []Tab{TabAll, TabTop, TabNew, TabFav}

const DefaultTopLimit = 10

func ParseTab(s string) (Tab, error) {
	tab := Tab(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(Tabs, tab) {
		return tab, nil
	}
	return "", fmt.Errorf("unknown tab %q (want all, top, new or fav)", s)
}

func (t Tab) sort() sources.SortOrder {
	switch t {
	case TabTop:
		return sources.SortScore
	case TabNew:
		return sources.SortRecent
	}
	return sources.SortPopular
}

type BrowserState struct {
	Kind data.MediaKind
	Tab  Tab
	Term string
}

// ViewModel is everything a list screen renders. It is rebuilt from
// scratch on every state change.
type ViewModel struct {
	State   BrowserState
	Items   []data.MediaItem
	Count   int
	Message string
}

// Browser holds the user's intent on a list screen (tab and search term)
// and re-derives the visible items whenever it changes.
type Browser struct {
	source   sources.Source
	library  *data.Library
	topLimit int

	mu    sync.Mutex
	state BrowserState
}

func NewBrowser(source sources.Source, library *data.Library, topLimit int) *Browser {
	if topLimit <= 0 {
		topLimit = DefaultTopLimit
	}
	return &Browser{
		source:   source,
		library:  library,
		topLimit: topLimit,
		state:    BrowserState{Kind: source.Kind(), Tab: TabAll},
	}
}

func (b *Browser) State() BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Browser) SetActiveFilter(ctx context.Context, tab Tab) ViewModel {
	b.mu.Lock()
	b.state.Tab = tab
	state := b.state
	b.mu.Unlock()
	return b.derive(ctx, state)
}

func (b *Browser) SetSearchTerm(ctx context.Context, term string) ViewModel {
	b.mu.Lock()
	b.state.Term = strings.TrimSpace(term)
	state := b.state
	b.mu.Unlock()
	return b.derive(ctx, state)
}

func (b *Browser) Refresh(ctx context.Context) ViewModel {
	return b.derive(ctx, b.State())
}

func (b *Browser) derive(ctx context.Context, state BrowserState) ViewModel {
	vm := ViewModel{State: state}

	items, err := b.items(ctx, state)
	if err != nil {
		vm.Message = UserMessage(err)
		return vm
	}

	vm.Items = items
	vm.Count = len(items)
	if vm.Count == 0 {
		vm.Message = emptyMessage(state)
	}
	return vm
}

func (b *Browser) items(ctx context.Context, state BrowserState) ([]data.MediaItem, error) {
	if state.Tab == TabFav {
		favs, err := b.source.ListByIDs(ctx, b.library.Favorites(state.Kind))
		if err != nil {
			return nil, err
		}
		return FilterItems(favs, state.Term), nil
	}

	var items []data.MediaItem
	var err error
	if state.Term != "" {
		items, err = b.source.Search(ctx, state.Term, state.Tab.sort())
	} else {
		items, err = b.source.List(ctx, state.Tab.sort())
	}
	if err != nil {
		return nil, err
	}
	if state.Tab == TabTop && len(items) > b.topLimit {
		items = items[:b.topLimit]
	}
	return items, nil
}

// FilterItems keeps items whose title, genres or status contain term,
// ignoring case and accents.
func FilterItems(items []data.MediaItem, term string) []data.MediaItem {
	needle := mapper.Fold(strings.TrimSpace(term))
	if needle == "" {
		return items
	}
	return lo.Filter(items, func(it data.MediaItem, _ int) bool {
		haystack := it.Title + " " + strings.Join(it.Genres, " ") + " " + it.Status
		return strings.Contains(mapper.Fold(haystack), needle)
	})
}

func emptyMessage(state BrowserState) string {
	switch {
	case state.Term != "":
		return fmt.Sprintf("No results for %q.", state.Term)
	case state.Tab == TabFav:
		return "No favorites yet."
	}
	return "Nothing to show."
}
