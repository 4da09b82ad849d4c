package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/app/components"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
)

type DetailsScreen struct {
	ctx        context.Context
	controller *services.Controller
	kind       data.MediaKind
	mediaID    string
	view       *services.DetailView
	entries    *components.EntryList
	spinner    spinner.Model
	loading    bool
	message    string
	width      int
	height     int
}

func NewDetailsScreen(ctx context.Context, controller *services.Controller, ref mediaRef) *DetailsScreen {
	return &DetailsScreen{
		ctx:        ctx,
		controller: controller,
		kind:       ref.Kind,
		mediaID:    ref.MediaID,
		entries:    components.NewEntryList(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.LoadingStyle)),
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(s.spinner.Tick, s.loadDetails)
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.entries.Prev()
		case "down", "j":
			s.entries.Next()
		case "enter":
			if e := s.entries.Selected(); e != nil {
				return s, s.open(e.ID)
			}
		case "s":
			if s.view != nil {
				if first, ok := s.view.First.Get(); ok {
					return s, s.open(first.ID)
				}
				s.message = fmt.Sprintf("Nothing to %s yet.", verbFor(s.kind))
			}
		case "c":
			if s.view != nil {
				if last, ok := s.view.Continue.Get(); ok {
					return s, s.open(last.ID)
				}
				s.message = "No saved position for this title."
			}
		case "f":
			if s.view != nil {
				return s, s.toggleFavorite
			}
		case "r":
			s.loading = true
			return s, tea.Batch(s.spinner.Tick, s.loadDetails)
		case "esc", "backspace":
			return s, switchTo(screenBrowse, nil)
		}

	case detailsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.message = services.UserMessage(msg.err)
			return s, nil
		}
		view := msg.view
		s.view = &view
		s.message = view.Message
		s.entries.SetItems(view.Feed.Entries)
		if last, ok := view.Continue.Get(); ok {
			s.entries.Marked = last.ID
			s.entries.Select(last.ID)
		}

	case favoriteToggledMsg:
		if msg.err != nil {
			s.message = services.UserMessage(msg.err)
		} else if s.view != nil {
			s.view.IsFavorite = msg.on
		}

	case spinner.TickMsg:
		if s.loading {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			return s, cmd
		}
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: open • s: start • c: continue • f: favorite • r: refresh • esc: back • q: quit",
	)

	if s.view == nil {
		body := s.spinner.View() + styles.LoadingStyle.Render(" Loading...")
		if !s.loading {
			body = styles.ErrorStyle.Render(s.message)
		}
		return fmt.Sprintf("%s\n\n%s", body, help)
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("%s %s", kindIcon(s.kind), s.view.Item.Title))

	var message string
	if s.message != "" {
		message = styles.ErrorStyle.Render(s.message) + "\n\n"
	}

	return fmt.Sprintf("%s\n\n%s%s\n%s\n%s",
		header,
		message,
		s.renderInfo(),
		s.entries.View(s.kind),
		help,
	)
}

func (s *DetailsScreen) renderInfo() string {
	item := s.view.Item

	credits := item.Authors
	if s.kind == data.KindAnime {
		credits = item.Studios
	}

	lines := []string{
		components.MediaMeta(item),
		styles.GenreStyle.Render(strings.Join(item.Genres, " · ")),
	}
	if len(credits) > 0 {
		lines = append(lines, styles.MutedStyle.Render(strings.Join(credits, ", ")))
	}
	lines = append(lines,
		"",
		styles.TextStyle.Render(truncate(item.Description, 300)),
		"",
		styles.SubtitleStyle.Render(s.view.FavoriteLabel()),
	)

	var shortcuts []string
	if first, ok := s.view.First.Get(); ok {
		shortcuts = append(shortcuts, fmt.Sprintf("s: Start with %s", first.Label()))
	}
	if last, ok := s.view.Continue.Get(); ok {
		shortcuts = append(shortcuts, fmt.Sprintf("c: Continue %s", last.Label()))
	}
	if len(shortcuts) > 0 {
		lines = append(lines, styles.MutedStyle.Render(strings.Join(shortcuts, "   ")))
	}

	width := s.width - 4
	if width < 20 {
		width = 20
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func verbFor(kind data.MediaKind) string {
	if kind == data.KindAnime {
		return "watch"
	}
	return "read"
}

// Commands

func (s *DetailsScreen) loadDetails() tea.Msg {
	view, err := s.controller.LoadDetail(s.ctx, s.kind, s.mediaID)
	return detailsLoadedMsg{view: view, err: err}
}

func (s *DetailsScreen) toggleFavorite() tea.Msg {
	on, err := s.controller.ToggleFavorite(s.kind, s.mediaID)
	return favoriteToggledMsg{on: on, err: err}
}

func (s *DetailsScreen) open(entryID string) tea.Cmd {
	return switchTo(screenReader, entryRef{Kind: s.kind, MediaID: s.mediaID, EntryID: entryID})
}
