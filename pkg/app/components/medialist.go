package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
)

// cardHeight is the number of terminal rows one rendered card takes.
const cardHeight = 6

type MediaList struct {
	Items         []data.MediaItem
	SelectedIndex int
	Width         int
	Height        int
	Empty         string
}

func NewMediaList() *MediaList {
	return &MediaList{
		Items:         []data.MediaItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
		Empty:         "Nothing to show.",
	}
}

func (m *MediaList) SetItems(items []data.MediaItem) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

func (m *MediaList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *MediaList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *MediaList) Selected() *data.MediaItem {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

// visible returns the window of items that fits the list height, keeping
// the selection on screen.
func (m *MediaList) visible() (int, int) {
	perPage := m.Height / cardHeight
	if perPage < 1 {
		perPage = 1
	}
	return Window(len(m.Items), m.SelectedIndex, perPage)
}

func (m *MediaList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(m.Empty)
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	start, end := m.visible()

	for i := start; i < end; i++ {
		item := m.Items[i]
		cardStyle := styles.CardStyle
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(item.Title)
		card := cardStyle.Width(m.Width - 4).Render(lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			MediaMeta(item),
			styles.GenreStyle.Render(strings.Join(item.Genres, " · ")),
		))
		b.WriteString(card)
		b.WriteString("\n")
	}

	if end-start < len(m.Items) {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.Items)),
		))
	}

	return b.String()
}

// MediaMeta renders the one-line summary of an item: status, year and score.
func MediaMeta(item data.MediaItem) string {
	parts := []string{styles.StatusStyle(item.Status).Render(item.Status)}
	if item.Year > 0 {
		parts = append(parts, styles.MutedStyle.Render(fmt.Sprintf("%d", item.Year)))
	}
	if score, ok := item.Score.Get(); ok {
		parts = append(parts, styles.ScoreStyle.Render(fmt.Sprintf("★ %.1f", score)))
	}
	return strings.Join(parts, styles.MutedStyle.Render(" • "))
}

// Window returns the [start, end) slice of total rows, at most size long,
// that keeps selected roughly centered.
func Window(total, selected, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > total {
		end = total
		start = end - size
	}
	return start, end
}
