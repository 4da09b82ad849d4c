package data

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

// MaxHistory bounds the per-kind history log.
const MaxHistory = 30

const (
	keyQuality      = "shinobix_quality"
	keyCurrentTitle = "shinobix_current_title"
)

func favoritesKey(kind MediaKind) string { return "shinobix_favs_" + string(kind) }
func lastKey(kind MediaKind) string      { return "shinobix_last_" + string(kind) }
func historyKey(kind MediaKind) string   { return "shinobix_history_" + string(kind) }

// Library owns every persisted user record: favorites, history, last
// position and preferences. Nothing else writes to the store.
type Library struct {
	store Store
	now   func() time.Time

	// read-modify-write sequences must not interleave
	mu sync.Mutex
}

func NewLibrary(store Store) *Library {
	return &Library{store: store, now: time.Now}
}

func (l *Library) Favorites(kind MediaKind) []string {
	return GetJSON(l.store, favoritesKey(kind), []string{})
}

func (l *Library) IsFavorite(kind MediaKind, id string) bool {
	return lo.Contains(l.Favorites(kind), id)
}

// ToggleFavorite flips membership of id and reports whether it is now a
// favorite.
func (l *Library) ToggleFavorite(kind MediaKind, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	favs := l.Favorites(kind)
	present := lo.Contains(favs, id)
	if present {
		favs = lo.Without(favs, id)
	} else {
		favs = append(favs, id)
	}
	if err := SetJSON(l.store, favoritesKey(kind), favs); err != nil {
		return present, err
	}
	return !present, nil
}

func (l *Library) LastPosition(kind MediaKind) (LastPosition, bool) {
	last := GetJSON[*LastPosition](l.store, lastKey(kind), nil)
	if last == nil || last.MediaID == "" {
		return LastPosition{}, false
	}
	return *last, true
}

func (l *Library) SetLastPosition(kind MediaKind, mediaID, entryID string) error {
	return SetJSON(l.store, lastKey(kind), LastPosition{
		MediaID:   mediaID,
		EntryID:   entryID,
		Timestamp: l.now().UnixMilli(),
	})
}

func (l *Library) History(kind MediaKind) []HistoryEntry {
	return GetJSON(l.store, historyKey(kind), []HistoryEntry{})
}

// PushHistory puts entry at the front of the log. An existing record for
// the same entry is moved rather than duplicated.
func (l *Library) PushHistory(kind MediaKind, entry HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp == 0 {
		entry.Timestamp = l.now().UnixMilli()
	}
	rest := lo.Reject(l.History(kind), func(h HistoryEntry, _ int) bool {
		return h.EntryID == entry.EntryID
	})
	log := append([]HistoryEntry{entry}, rest...)
	if len(log) > MaxHistory {
		log = log[:MaxHistory]
	}
	return SetJSON(l.store, historyKey(kind), log)
}

func (l *Library) Quality() Quality {
	q := GetJSON(l.store, keyQuality, QualityData)
	if !q.Valid() {
		return QualityData
	}
	return q
}

func (l *Library) SetQuality(q Quality) error {
	return SetJSON(l.store, keyQuality, q)
}

// CurrentTitle is a scratch value holding the title of the media last
// opened, used to label history written by the reader.
func (l *Library) CurrentTitle() string {
	return GetJSON(l.store, keyCurrentTitle, "")
}

func (l *Library) SetCurrentTitle(title string) error {
	return SetJSON(l.store, keyCurrentTitle, title)
}
