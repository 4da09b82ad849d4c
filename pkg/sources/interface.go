package sources

import (
	"context"
	"fmt"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/pkg/errors"
)

// SortOrder is the remote ordering requested for a list.
type SortOrder string

const (
	SortPopular  SortOrder = "popular"
	SortScore    SortOrder = "score"
	SortRecent   SortOrder = "recent"
	SortTrending SortOrder = "trending"
)

const DefaultPageSize = 24

var ErrNotFound = errors.New("not found")

// Source is a remote catalog of one media kind.
type Source interface {
	Kind() data.MediaKind

	Search(ctx context.Context, term string, sort SortOrder) ([]data.MediaItem, error)
	List(ctx context.Context, sort SortOrder) ([]data.MediaItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]data.MediaItem, error)

	GetDetail(ctx context.Context, id string) (data.MediaItem, error)
	GetFeed(ctx context.Context, id string) (data.Feed, error)
	GetEntry(ctx context.Context, mediaID, entryID string) (data.Entry, error)

	// GetPlayable returns page image URLs in reading order for a chapter,
	// or the single stream URL of an episode.
	GetPlayable(ctx context.Context, mediaID, entryID string, quality data.Quality) ([]string, error)
}

// Options are the list shaping knobs shared by every source.
type Options struct {
	PageSize      int
	GenreLimit    int
	TitleLanguage string
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

// CatalogError is what a source returns when a remote call fails. Message
// is safe to show to the user as is.
type CatalogError struct {
	Op      string
	Message string
	Err     error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

var opMessages = map[string]string{
	"search":   "Search failed. Check your connection and try again.",
	"list":     "Couldn't load the catalog. Try again in a moment.",
	"detail":   "Couldn't load this title. Try again in a moment.",
	"feed":     "Couldn't load the episode list. Try again in a moment.",
	"entry":    "Couldn't load this entry. Try again in a moment.",
	"playable": "Couldn't load the pages. Try again in a moment.",
}

func catalogError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotFound) {
		return err
	}
	msg, ok := opMessages[op]
	if !ok {
		msg = "Something went wrong. Try again in a moment."
	}
	utils.Warn("catalog request failed", "op", op, "err", err)
	return &CatalogError{Op: op, Message: msg, Err: err}
}
