package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/app/components"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
)

// ReaderScreen shows one chapter's pages or one episode's stream, with
// previous/next navigation along the feed.
type ReaderScreen struct {
	ctx        context.Context
	controller *services.Controller
	kind       data.MediaKind
	target     entryRef
	resume     bool
	view       *services.ReaderView
	pages      *components.PageTracker
	loading    bool
	message    string
	width      int
	height     int
}

func NewReaderScreen(ctx context.Context, controller *services.Controller, ref entryRef) *ReaderScreen {
	return &ReaderScreen{
		ctx:        ctx,
		controller: controller,
		kind:       ref.Kind,
		target:     ref,
		pages:      components.NewPageTracker(0, 80),
	}
}

// NewContinueScreen opens whatever the user last watched or read.
func NewContinueScreen(ctx context.Context, controller *services.Controller, kind data.MediaKind) *ReaderScreen {
	s := NewReaderScreen(ctx, controller, entryRef{Kind: kind})
	s.resume = true
	return s
}

func (s *ReaderScreen) Init() tea.Cmd {
	s.loading = true
	return s.load
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.pages.SetWidth(msg.Width)

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		switch msg.String() {
		case "right", "l", "n":
			if s.view != nil {
				if next, ok := s.view.Adjacent.Next.Get(); ok {
					return s, s.open(next.ID)
				}
			}
		case "left", "h", "p":
			if s.view != nil {
				if prev, ok := s.view.Adjacent.Previous.Get(); ok {
					return s, s.open(prev.ID)
				}
			}
		case "down", "j":
			s.pages.Next()
		case "up", "k":
			s.pages.Prev()
		case "d":
			if s.kind == data.KindManga {
				return s, s.toggleQuality
			}
		case "esc", "backspace":
			if s.view != nil {
				return s, switchTo(screenDetails, mediaRef{Kind: s.kind, MediaID: s.view.MediaID})
			}
			return s, switchTo(screenBrowse, nil)
		}

	case readerLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.message = services.UserMessage(msg.err)
			return s, nil
		}
		view := msg.view
		s.view = &view
		s.resume = false
		s.target = entryRef{Kind: view.Kind, MediaID: view.MediaID, EntryID: view.Entry.ID}
		s.message = ""
		s.pages.Reset(len(view.URLs))

	case qualityToggledMsg:
		if msg.err != nil {
			s.message = services.UserMessage(msg.err)
			return s, nil
		}
		if s.view == nil {
			return s, nil
		}
		// same chapter, pages rebuilt for the new quality
		return s, s.open(s.view.Entry.ID)
	}

	return s, nil
}

func (s *ReaderScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	help := "←/p →/n: previous/next • esc: back • q: quit"
	if s.kind == data.KindManga {
		help = "←/p →/n: previous/next chapter • ↑/k ↓/j: page • d: data saver • esc: back • q: quit"
	}
	helpView := styles.HelpStyle.Render(help)

	var message string
	if s.message != "" {
		message = styles.ErrorStyle.Render(s.message) + "\n\n"
	}

	if s.view == nil {
		body := styles.LoadingStyle.Render("Loading...")
		if !s.loading {
			body = ""
		}
		return fmt.Sprintf("%s%s\n\n%s", message, body, helpView)
	}

	header := styles.TitleStyle.Render(s.view.Heading())

	return fmt.Sprintf("%s\n%s\n\n%s%s\n%s",
		header,
		s.renderNav(),
		message,
		s.renderContent(),
		helpView,
	)
}

func (s *ReaderScreen) renderNav() string {
	prevLabel, nextLabel := "◀ Previous", "Next ▶"
	prev, hasPrev := s.view.Adjacent.Previous.Get()
	if hasPrev {
		prevLabel = "◀ " + prev.Label()
	}
	next, hasNext := s.view.Adjacent.Next.Get()
	if hasNext {
		nextLabel = next.Label() + " ▶"
	}

	parts := []string{styles.Button(prevLabel, hasPrev), " ", styles.Button(nextLabel, hasNext)}
	if s.kind == data.KindManga {
		parts = append(parts, "  ", styles.MutedStyle.Render(fmt.Sprintf("Quality: %s", s.view.Quality)))
	}
	if s.loading {
		parts = append(parts, "  ", styles.LoadingStyle.Render("Loading..."))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (s *ReaderScreen) renderContent() string {
	if len(s.view.URLs) == 0 {
		return styles.MutedStyle.Render("Nothing to show for this entry.") + "\n"
	}

	if s.kind == data.KindAnime {
		return fmt.Sprintf("%s\n%s\n",
			styles.SubtitleStyle.Render("Open in your player:"),
			styles.TextStyle.Render(s.view.URLs[0]),
		)
	}

	page := s.view.URLs[s.pages.Current()]
	return fmt.Sprintf("%s\n\n%s\n",
		styles.CardStyle.Width(max(s.width-4, 20)).Render(styles.TextStyle.Render(page)),
		s.pages.View(),
	)
}

// Commands

func (s *ReaderScreen) load() tea.Msg {
	if s.resume {
		view, err := s.controller.Continue(s.ctx, s.kind)
		return readerLoadedMsg{view: view, err: err}
	}
	view, err := s.controller.OpenEntry(s.ctx, s.kind, s.target.MediaID, s.target.EntryID)
	return readerLoadedMsg{view: view, err: err}
}

func (s *ReaderScreen) open(entryID string) tea.Cmd {
	s.target.EntryID = entryID
	s.loading = true
	return s.load
}

func (s *ReaderScreen) toggleQuality() tea.Msg {
	q, err := s.controller.ToggleQuality()
	return qualityToggledMsg{quality: q, err: err}
}
