package screens

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/shinobix/pkg/app/components"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
)

type HistoryScreen struct {
	controller *services.Controller
	kind       data.MediaKind
	entries    []data.HistoryEntry
	selected   int
	width      int
	height     int
}

func NewHistoryScreen(controller *services.Controller, kind data.MediaKind) *HistoryScreen {
	return &HistoryScreen{
		controller: controller,
		kind:       kind,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.loadHistory
}

func (s *HistoryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if len(s.entries) > 0 {
				s.selected = (s.selected - 1 + len(s.entries)) % len(s.entries)
			}
		case "down", "j":
			if len(s.entries) > 0 {
				s.selected = (s.selected + 1) % len(s.entries)
			}
		case "enter":
			if s.selected < len(s.entries) {
				h := s.entries[s.selected]
				return s, switchTo(screenReader, entryRef{Kind: s.kind, MediaID: h.MediaID, EntryID: h.EntryID})
			}
		case "r":
			return s, s.loadHistory
		case "esc", "backspace":
			return s, switchTo(screenBrowse, nil)
		}

	case historyLoadedMsg:
		s.entries = msg.entries
		s.selected = 0
	}

	return s, nil
}

func (s *HistoryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("🕘 %s History", kindName(s.kind)))

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: open • r: refresh • esc: back • q: quit",
	)

	if len(s.entries) == 0 {
		empty := styles.MutedStyle.Render(fmt.Sprintf("You haven't %s anything yet", s.kind.Verb()))
		return fmt.Sprintf("%s\n\n%s\n%s", header, empty, help)
	}

	var b strings.Builder
	start, end := components.Window(len(s.entries), s.selected, max(s.height-8, 5))
	for i := start; i < end; i++ {
		h := s.entries[i]
		when := time.UnixMilli(h.Timestamp).Format("Jan 2 15:04")
		line := fmt.Sprintf("%s — %s", h.Title, h.Label)
		if i == s.selected {
			b.WriteString(styles.SelectedStyle.Render(line))
		} else {
			b.WriteString(styles.TextStyle.Render(line))
		}
		b.WriteString(" ")
		b.WriteString(styles.MutedStyle.Render(when))
		b.WriteString("\n")
	}

	return fmt.Sprintf("%s\n\n%s\n%s", header, b.String(), help)
}

// Commands

func (s *HistoryScreen) loadHistory() tea.Msg {
	return historyLoadedMsg{entries: s.controller.History(s.kind)}
}
