package screens

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/samber/lo"
)

type screenType int

const (
	browseView screenType = iota
	detailsView
	readerView
	historyView
)

type RootOptions struct {
	SearchDebounce time.Duration
}

type RootScreen struct {
	ctx        context.Context
	controller *services.Controller
	kinds      []data.MediaKind
	kind       data.MediaKind

	currentView screenType
	browse      map[data.MediaKind]*BrowseScreen
	details     *DetailsScreen
	reader      *ReaderScreen
	history     *HistoryScreen

	width  int
	height int
}

func NewRootScreen(ctx context.Context, controller *services.Controller, opts RootOptions) *RootScreen {
	kinds := controller.Kinds()
	browse := make(map[data.MediaKind]*BrowseScreen, len(kinds))
	for _, kind := range kinds {
		browse[kind] = NewBrowseScreen(ctx, controller, kind, opts.SearchDebounce)
	}

	kind := data.KindAnime
	if len(kinds) > 0 {
		kind = kinds[0]
	}

	return &RootScreen{
		ctx:         ctx,
		controller:  controller,
		kinds:       kinds,
		kind:        kind,
		currentView: browseView,
		browse:      browse,
	}
}

func (r *RootScreen) Init() tea.Cmd {
	if b := r.browse[r.kind]; b != nil {
		return b.Init()
	}
	return nil
}

func (r *RootScreen) typing() bool {
	b := r.browse[r.kind]
	return r.currentView == browseView && b != nil && b.Typing()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		// every screen keeps its own size, inactive ones included
		var cmds []tea.Cmd
		for _, b := range r.browse {
			_, c := b.Update(msg)
			cmds = append(cmds, c)
		}
		if r.currentView != browseView {
			_, c := r.active().Update(msg)
			cmds = append(cmds, c)
		}
		return r, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if !r.typing() {
				return r, tea.Quit
			}
		}

	case switchKindMsg:
		return r, r.switchKind()

	// browse results are routed by kind so a late answer reaches its own list
	case searchTickMsg:
		return r, r.forwardBrowse(msg.kind, msg)
	case viewModelMsg:
		return r, r.forwardBrowse(msg.kind, msg)

	case SwitchScreenMsg:
		return r, r.switchScreen(msg)
	}

	newModel, cmd := r.active().Update(msg)
	r.setActive(newModel)
	return r, cmd
}

func (r *RootScreen) forwardBrowse(kind data.MediaKind, msg tea.Msg) tea.Cmd {
	b, ok := r.browse[kind]
	if !ok {
		return nil
	}
	_, cmd := b.Update(msg)
	return cmd
}

func (r *RootScreen) switchKind() tea.Cmd {
	if len(r.kinds) < 2 {
		return nil
	}
	idx := lo.IndexOf(r.kinds, r.kind)
	r.kind = r.kinds[(idx+1)%len(r.kinds)]
	r.currentView = browseView
	utils.Debug("switched media kind", "kind", r.kind)
	return r.browse[r.kind].Init()
}

func (r *RootScreen) switchScreen(msg SwitchScreenMsg) tea.Cmd {
	size := tea.WindowSizeMsg{Width: r.width, Height: r.height}

	switch msg.Screen {
	case screenBrowse:
		r.currentView = browseView
		if b := r.browse[r.kind]; b != nil {
			return b.Init()
		}
		return nil
	case screenDetails:
		ref, ok := msg.Data.(mediaRef)
		if !ok {
			return nil
		}
		r.details = NewDetailsScreen(r.ctx, r.controller, ref)
		r.details.Update(size)
		r.currentView = detailsView
		return r.details.Init()
	case screenReader:
		ref, ok := msg.Data.(entryRef)
		if !ok {
			return nil
		}
		r.reader = NewReaderScreen(r.ctx, r.controller, ref)
		r.reader.Update(size)
		r.currentView = readerView
		return r.reader.Init()
	case screenContinue:
		kind, ok := msg.Data.(data.MediaKind)
		if !ok {
			kind = r.kind
		}
		r.reader = NewContinueScreen(r.ctx, r.controller, kind)
		r.reader.Update(size)
		r.currentView = readerView
		return r.reader.Init()
	case screenHistory:
		kind, ok := msg.Data.(data.MediaKind)
		if !ok {
			kind = r.kind
		}
		r.history = NewHistoryScreen(r.controller, kind)
		r.history.Update(size)
		r.currentView = historyView
		return r.history.Init()
	}
	utils.Warn("unknown screen", "screen", msg.Screen)
	return nil
}

func (r *RootScreen) active() tea.Model {
	switch r.currentView {
	case detailsView:
		if r.details != nil {
			return r.details
		}
	case readerView:
		if r.reader != nil {
			return r.reader
		}
	case historyView:
		if r.history != nil {
			return r.history
		}
	}
	if b := r.browse[r.kind]; b != nil {
		return b
	}
	return emptyScreen{}
}

func (r *RootScreen) setActive(m tea.Model) {
	switch m := m.(type) {
	case *BrowseScreen:
		r.browse[m.kind] = m
	case *DetailsScreen:
		r.details = m
	case *ReaderScreen:
		r.reader = m
	case *HistoryScreen:
		r.history = m
	}
}

func (r *RootScreen) View() string {
	return fmt.Sprintf("%s\n\n%s", r.renderTabs(), r.active().View())
}

func (r *RootScreen) renderTabs() string {
	if r.currentView != browseView {
		// tabs only on the home lists, use esc to go back
		return ""
	}

	tabs := lo.Map(r.kinds, func(kind data.MediaKind, _ int) string {
		if kind == r.kind {
			return styles.ActiveTabStyle.Render(kindName(kind))
		}
		return styles.InactiveTabStyle.Render(kindName(kind))
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// emptyScreen stands in when no catalog is configured.
type emptyScreen struct{}

func (emptyScreen) Init() tea.Cmd                       { return nil }
func (emptyScreen) Update(tea.Msg) (tea.Model, tea.Cmd) { return emptyScreen{}, nil }
func (emptyScreen) View() string {
	return styles.MutedStyle.Render("No catalog configured.")
}
