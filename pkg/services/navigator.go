package services

import (
	"fmt"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/samber/mo"
)

// Adjacent holds the neighbours of the current entry. An absent side means
// the corresponding button is disabled.
type Adjacent struct {
	Current  data.Entry
	Index    int
	Previous mo.Option[data.Entry]
	Next     mo.Option[data.Entry]
}

// ComputeAdjacent locates currentID in the feed by identity. Previous and
// next follow reading order: on a newest-first feed the previous (older)
// entry sits at the higher index.
func ComputeAdjacent(feed data.Feed, currentID string) (Adjacent, error) {
	idx := feed.IndexOf(currentID)
	if idx < 0 {
		return Adjacent{}, fmt.Errorf("entry %s of %s: %w", currentID, feed.MediaID, ErrNotFound)
	}

	prev, next := idx-1, idx+1
	if feed.Order == data.Descending {
		prev, next = idx+1, idx-1
	}

	return Adjacent{
		Current:  feed.Entries[idx],
		Index:    idx,
		Previous: entryAt(feed.Entries, prev),
		Next:     entryAt(feed.Entries, next),
	}, nil
}

func entryAt(entries []data.Entry, i int) mo.Option[data.Entry] {
	if i < 0 || i >= len(entries) {
		return mo.None[data.Entry]()
	}
	return mo.Some(entries[i])
}

// Navigator records where the user is.
type Navigator struct {
	library *data.Library
}

func NewNavigator(library *data.Library) *Navigator {
	return &Navigator{library: library}
}

// RecordProgress overwrites the last position and moves the entry to the
// front of the history. An empty title falls back to the title of the
// media last opened.
func (n *Navigator) RecordProgress(kind data.MediaKind, mediaID, entryID, label, title string) error {
	if title == "" {
		title = n.library.CurrentTitle()
	}
	if err := n.library.SetLastPosition(kind, mediaID, entryID); err != nil {
		return fmt.Errorf("failed to save last position: %w", err)
	}
	err := n.library.PushHistory(kind, data.HistoryEntry{
		MediaID: mediaID,
		EntryID: entryID,
		Title:   title,
		Label:   label,
	})
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
