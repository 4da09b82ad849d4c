package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
)

const entryWindow = 10

// EntryList is the chapter or episode list of a detail page. Unlike
// MediaList it does not wrap around.
type EntryList struct {
	Items         []data.Entry
	SelectedIndex int
	// Marked is the entry the user stopped at, if any.
	Marked string
}

func NewEntryList() *EntryList {
	return &EntryList{}
}

func (l *EntryList) SetItems(items []data.Entry) {
	l.Items = items
	l.SelectedIndex = 0
}

func (l *EntryList) Next() {
	if l.SelectedIndex < len(l.Items)-1 {
		l.SelectedIndex++
	}
}

func (l *EntryList) Prev() {
	if l.SelectedIndex > 0 {
		l.SelectedIndex--
	}
}

// Select moves the cursor to entryID if present.
func (l *EntryList) Select(entryID string) bool {
	for i, e := range l.Items {
		if e.ID == entryID {
			l.SelectedIndex = i
			return true
		}
	}
	return false
}

func (l *EntryList) Selected() *data.Entry {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

func (l *EntryList) View(kind data.MediaKind) string {
	noun := "chapters"
	if kind == data.KindAnime {
		noun = "episodes"
	}
	if len(l.Items) == 0 {
		return styles.MutedStyle.Render(fmt.Sprintf("No %s available", noun))
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("%s (%d total):", strings.ToUpper(noun[:1])+noun[1:], len(l.Items))))
	b.WriteString("\n\n")

	start, end := Window(len(l.Items), l.SelectedIndex, entryWindow)
	for i := start; i < end; i++ {
		e := l.Items[i]
		text := e.Label()
		if e.Title != "" {
			text = fmt.Sprintf("%s: %s", text, e.Title)
		}

		icon := "○"
		lineStyle := styles.MutedStyle
		if e.ID == l.Marked {
			icon = "▶"
			lineStyle = styles.TextStyle
		}

		line := fmt.Sprintf("%s %s", icon, text)
		if i == l.SelectedIndex {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = lineStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(l.Items) > entryWindow {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d %s", start+1, end, len(l.Items), noun),
		))
	}

	return b.String()
}
