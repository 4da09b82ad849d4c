package data

import (
	"fmt"

	"github.com/samber/mo"
)

type MediaKind string

const (
	KindAnime MediaKind = "anime"
	KindManga MediaKind = "manga"
)

// ParseKind accepts the kind names used on the command line and in config.
func ParseKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case KindAnime, KindManga:
		return MediaKind(s), nil
	}
	return "", fmt.Errorf("unknown media kind %q (want anime or manga)", s)
}

// Verb is what the user does with an entry of this kind.
func (k MediaKind) Verb() string {
	if k == KindManga {
		return "read"
	}
	return "watched"
}

type MediaItem struct {
	ID           string
	Kind         MediaKind
	Title        string
	Cover        string
	Banner       string
	Year         int
	Status       string
	Score        mo.Option[float64]
	Genres       []string
	Studios      []string
	Authors      []string
	Description  string
	EpisodeCount int
}

// Entry is one chapter of a manga or one episode of an anime.
type Entry struct {
	ID       string
	MediaID  string
	N        int    // episode number, zero for chapters
	Chapter  string // may be fractional ("10.5") or empty for oneshots
	Volume   string
	Title    string
	Language string
	Pages    int
	Source   string // playable URL for episodes
}

func (e Entry) Label() string {
	if e.N > 0 {
		return fmt.Sprintf("Ep %d", e.N)
	}
	label := "Oneshot"
	if e.Chapter != "" {
		label = fmt.Sprintf("Ch. %s", e.Chapter)
	}
	if e.Volume != "" && e.Volume != "0" {
		label = fmt.Sprintf("Vol. %s, %s", e.Volume, label)
	}
	return label
}

type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Feed is the ordered list of entries of one media item. Manga feeds are
// newest-first, anime feeds are in episode order.
type Feed struct {
	MediaID string
	Kind    MediaKind
	Order   SortDirection
	Entries []Entry
}

func (f Feed) IndexOf(entryID string) int {
	for i, e := range f.Entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

// First is the entry a new reader or viewer starts from.
func (f Feed) First() (Entry, bool) {
	if len(f.Entries) == 0 {
		return Entry{}, false
	}
	if f.Order == Descending {
		return f.Entries[len(f.Entries)-1], true
	}
	return f.Entries[0], true
}

type Quality string

const (
	QualityData      Quality = "data"
	QualityDataSaver Quality = "data-saver"
)

func (q Quality) Toggle() Quality {
	if q == QualityDataSaver {
		return QualityData
	}
	return QualityDataSaver
}

func (q Quality) Valid() bool {
	return q == QualityData || q == QualityDataSaver
}

type HistoryEntry struct {
	MediaID   string `json:"mediaId"`
	EntryID   string `json:"entryId"`
	Title     string `json:"title"`
	Label     string `json:"label"`
	Timestamp int64  `json:"t"`
}

type LastPosition struct {
	MediaID   string `json:"mediaId"`
	EntryID   string `json:"entryId"`
	Timestamp int64  `json:"t"`
}
