package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc/pool"
)

// DetailView is what the detail screen renders.
type DetailView struct {
	Item       data.MediaItem
	Feed       data.Feed
	IsFavorite bool
	// First is the entry a newcomer starts with: episode one, or the
	// oldest chapter.
	First mo.Option[data.Entry]
	// Continue is set when the last position belongs to this media.
	Continue mo.Option[data.Entry]
	// Message explains a missing feed while the item itself loaded.
	Message string
}

func (v DetailView) FavoriteLabel() string {
	if v.IsFavorite {
		return "★ Remove from favorites"
	}
	return "☆ Add to favorites"
}

// ReaderView is what the reader/player screen renders.
type ReaderView struct {
	Kind       data.MediaKind
	MediaID    string
	MediaTitle string
	Entry      data.Entry
	Adjacent   Adjacent
	URLs       []string
	Quality    data.Quality
}

func (v ReaderView) Heading() string {
	heading := fmt.Sprintf("%s — %s", v.MediaTitle, v.Entry.Label())
	if v.Entry.Title != "" {
		heading += ": " + v.Entry.Title
	}
	return heading
}

// Controller is the page-level API the TUI and the CLI talk to.
type Controller struct {
	sources   map[data.MediaKind]sources.Source
	library   *data.Library
	navigator *Navigator
	browsers  map[data.MediaKind]*Browser

	mu     sync.Mutex
	feeds  map[string]data.Feed
	titles map[string]string
}

type ControllerOptions struct {
	TopLimit int
}

func NewController(library *data.Library, opts ControllerOptions, srcs ...sources.Source) *Controller {
	c := &Controller{
		sources:   make(map[data.MediaKind]sources.Source, len(srcs)),
		library:   library,
		navigator: NewNavigator(library),
		browsers:  make(map[data.MediaKind]*Browser, len(srcs)),
		feeds:     make(map[string]data.Feed),
		titles:    make(map[string]string),
	}
	for _, src := range srcs {
		c.sources[src.Kind()] = src
		c.browsers[src.Kind()] = NewBrowser(src, library, opts.TopLimit)
	}
	return c
}

func (c *Controller) Library() *data.Library {
	return c.library
}

func (c *Controller) Kinds() []data.MediaKind {
	kinds := lo.Keys(c.sources)
	// anime first, then manga
	return lo.Filter([]data.MediaKind{data.KindAnime, data.KindManga}, func(k data.MediaKind, _ int) bool {
		return lo.Contains(kinds, k)
	})
}

func (c *Controller) source(kind data.MediaKind) (sources.Source, error) {
	src, ok := c.sources[kind]
	if !ok {
		return nil, fmt.Errorf("no catalog configured for %s", kind)
	}
	return src, nil
}

// Browser returns the list state of the given kind, or nil.
func (c *Controller) Browser(kind data.MediaKind) *Browser {
	return c.browsers[kind]
}

// Home derives the default list for kind.
func (c *Controller) Home(ctx context.Context, kind data.MediaKind) ViewModel {
	b := c.Browser(kind)
	if b == nil {
		return ViewModel{State: BrowserState{Kind: kind}, Message: fmt.Sprintf("No catalog configured for %s.", kind)}
	}
	return b.Refresh(ctx)
}

func cacheKey(kind data.MediaKind, id string) string {
	return string(kind) + "/" + id
}

// feed returns the cached feed of a media, loading it on first use. A feed
// does not change for the rest of the session.
func (c *Controller) feed(ctx context.Context, src sources.Source, id string) (data.Feed, error) {
	key := cacheKey(src.Kind(), id)
	c.mu.Lock()
	feed, ok := c.feeds[key]
	c.mu.Unlock()
	if ok {
		return feed, nil
	}

	feed, err := src.GetFeed(ctx, id)
	if err != nil {
		return data.Feed{}, err
	}

	c.mu.Lock()
	c.feeds[key] = feed
	c.mu.Unlock()
	return feed, nil
}

func (c *Controller) rememberTitle(kind data.MediaKind, id, title string) {
	c.mu.Lock()
	c.titles[cacheKey(kind, id)] = title
	c.mu.Unlock()
	if err := c.library.SetCurrentTitle(title); err != nil {
		utils.Warn("failed to save current title", "err", err)
	}
}

func (c *Controller) cachedTitle(kind data.MediaKind, id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	title, ok := c.titles[cacheKey(kind, id)]
	return title, ok
}

// LoadDetail fetches the item and its feed concurrently. The item is
// required; a failed feed only leaves the entry list empty.
func (c *Controller) LoadDetail(ctx context.Context, kind data.MediaKind, id string) (DetailView, error) {
	src, err := c.source(kind)
	if err != nil {
		return DetailView{}, err
	}

	var (
		item               data.MediaItem
		feed               data.Feed
		detailErr, feedErr error
	)
	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() { item, detailErr = src.GetDetail(ctx, id) })
	p.Go(func() { feed, feedErr = c.feed(ctx, src, id) })
	p.Wait()

	if detailErr != nil {
		return DetailView{}, detailErr
	}
	c.rememberTitle(kind, id, item.Title)

	view := DetailView{
		Item:       item,
		IsFavorite: c.library.IsFavorite(kind, id),
		Feed:       feed,
	}
	if feedErr != nil {
		view.Feed = data.Feed{MediaID: id, Kind: kind}
		view.Message = UserMessage(feedErr)
		return view, nil
	}

	view.First = mo.TupleToOption(feed.First())
	if last, ok := c.library.LastPosition(kind); ok && last.MediaID == id {
		if idx := feed.IndexOf(last.EntryID); idx >= 0 {
			view.Continue = mo.Some(feed.Entries[idx])
		}
	}
	return view, nil
}

// OpenEntry resolves the entry inside its feed, loads what to play and
// records the visit.
func (c *Controller) OpenEntry(ctx context.Context, kind data.MediaKind, mediaID, entryID string) (ReaderView, error) {
	src, err := c.source(kind)
	if err != nil {
		return ReaderView{}, err
	}

	title, known := c.cachedTitle(kind, mediaID)
	var (
		feed    data.Feed
		feedErr error
	)
	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() { feed, feedErr = c.feed(ctx, src, mediaID) })
	if !known {
		p.Go(func() {
			item, err := src.GetDetail(ctx, mediaID)
			if err != nil {
				utils.Debug("title lookup failed", "media", mediaID, "err", err)
				return
			}
			title, known = item.Title, true
		})
	}
	p.Wait()

	if feedErr != nil {
		return ReaderView{}, feedErr
	}
	adj, err := ComputeAdjacent(feed, entryID)
	if err != nil {
		return ReaderView{}, err
	}

	quality := c.library.Quality()
	urls, err := src.GetPlayable(ctx, mediaID, entryID, quality)
	if err != nil {
		return ReaderView{}, err
	}

	if known {
		c.rememberTitle(kind, mediaID, title)
	} else {
		title = c.library.CurrentTitle()
	}
	if err := c.navigator.RecordProgress(kind, mediaID, entryID, adj.Current.Label(), title); err != nil {
		utils.Warn("failed to record progress", "media", mediaID, "entry", entryID, "err", err)
	}

	return ReaderView{
		Kind:       kind,
		MediaID:    mediaID,
		MediaTitle: title,
		Entry:      adj.Current,
		Adjacent:   adj,
		URLs:       urls,
		Quality:    quality,
	}, nil
}

// Continue reopens the last position of kind.
func (c *Controller) Continue(ctx context.Context, kind data.MediaKind) (ReaderView, error) {
	last, ok := c.library.LastPosition(kind)
	if !ok {
		return ReaderView{}, &NothingToContinueError{Kind: kind}
	}
	return c.OpenEntry(ctx, kind, last.MediaID, last.EntryID)
}

func (c *Controller) ToggleFavorite(kind data.MediaKind, id string) (bool, error) {
	return c.library.ToggleFavorite(kind, id)
}

// ToggleQuality switches between full and data-saver pages and returns
// the new setting.
func (c *Controller) ToggleQuality() (data.Quality, error) {
	q := c.library.Quality().Toggle()
	if err := c.library.SetQuality(q); err != nil {
		return c.library.Quality(), err
	}
	return q, nil
}

func (c *Controller) History(kind data.MediaKind) []data.HistoryEntry {
	return c.library.History(kind)
}
