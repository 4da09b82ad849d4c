package screens

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/app/components"
	"github.com/kerbaras/shinobix/pkg/app/styles"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/samber/lo"
)

const DefaultSearchDebounce = 450 * time.Millisecond

var tabLabels = map[services.Tab]string{
	services.TabAll: "All",
	services.TabTop: "Top",
	services.TabNew: "New",
	services.TabFav: "Favorites",
}

// BrowseScreen is the home list of one media kind: filter tabs, a search
// box and the resulting cards.
type BrowseScreen struct {
	ctx      context.Context
	kind     data.MediaKind
	browser  *services.Browser
	input    textinput.Model
	list     *components.MediaList
	spinner  spinner.Model
	debounce time.Duration
	seq      int
	loading  bool
	vm       services.ViewModel
	width    int
	height   int
}

func NewBrowseScreen(ctx context.Context, controller *services.Controller, kind data.MediaKind, debounce time.Duration) *BrowseScreen {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("Search %s...", kind)
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	return &BrowseScreen{
		ctx:      ctx,
		kind:     kind,
		browser:  controller.Browser(kind),
		input:    ti,
		list:     components.NewMediaList(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.LoadingStyle)),
		debounce: debounce,
	}
}

func (s *BrowseScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(textinput.Blink, s.spinner.Tick, s.refresh)
}

// Typing reports whether keys go to the search box.
func (s *BrowseScreen) Typing() bool {
	return s.input.Focused()
}

func (s *BrowseScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.Width = msg.Width - 2
		s.list.Height = msg.Height - 14

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return s, s.setTab(1)
		case "shift+tab":
			return s, s.setTab(-1)
		case "esc":
			if s.input.Focused() {
				s.input.Blur()
				return s, nil
			}
			s.input.Focus()
			return s, textinput.Blink
		}

		if s.input.Focused() {
			if msg.String() == "enter" {
				// search now instead of waiting for the tick
				s.seq++
				s.input.Blur()
				s.loading = true
				return s, tea.Batch(s.spinner.Tick, s.search(s.input.Value()))
			}
			before := s.input.Value()
			s.input, cmd = s.input.Update(msg)
			if s.input.Value() != before {
				return s, tea.Batch(cmd, s.scheduleSearch())
			}
			return s, cmd
		}

		switch msg.String() {
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "/":
			s.input.Focus()
			return s, textinput.Blink
		case "r":
			s.loading = true
			return s, tea.Batch(s.spinner.Tick, s.refresh)
		case "m":
			return s, func() tea.Msg { return switchKindMsg{} }
		case "h":
			return s, switchTo(screenHistory, s.kind)
		case "c":
			return s, switchTo(screenContinue, s.kind)
		case "enter":
			if selected := s.list.Selected(); selected != nil {
				return s, switchTo(screenDetails, mediaRef{Kind: s.kind, MediaID: selected.ID})
			}
		}

	case searchTickMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.loading = true
		return s, tea.Batch(s.spinner.Tick, s.search(msg.term))

	case viewModelMsg:
		// a derivation started before the latest tab or term change is stale
		if s.browser != nil && msg.vm.State != s.browser.State() {
			return s, nil
		}
		s.apply(msg.vm)

	case spinner.TickMsg:
		if s.loading {
			s.spinner, cmd = s.spinner.Update(msg)
		}
	}

	return s, cmd
}

func (s *BrowseScreen) apply(vm services.ViewModel) {
	s.vm = vm
	s.loading = false
	s.list.SetItems(vm.Items)
	s.list.Empty = vm.Message
}

func (s *BrowseScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("%s Browse %s", kindIcon(s.kind), kindName(s.kind)))

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	var status string
	switch {
	case s.loading:
		status = s.spinner.View() + styles.LoadingStyle.Render(" Loading...")
	case s.vm.Count > 0:
		status = styles.SubtitleStyle.Render(fmt.Sprintf("%d titles", s.vm.Count))
	}

	help := styles.HelpStyle.Render(
		"tab: filter • esc: switch focus • ↑/k ↓/j: navigate • enter: details • c: continue • h: history • m: anime/manga • q: quit",
	)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s\n%s",
		header,
		s.renderTabs(),
		inputView,
		status,
		s.list.View(),
		help,
	)
}

func (s *BrowseScreen) renderTabs() string {
	active := services.TabAll
	if s.browser != nil {
		active = s.browser.State().Tab
	}
	tabs := lo.Map(services.Tabs, func(tab services.Tab, _ int) string {
		if tab == active {
			return styles.ActiveTabStyle.Render(tabLabels[tab])
		}
		return styles.InactiveTabStyle.Render(tabLabels[tab])
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// Commands

func (s *BrowseScreen) scheduleSearch() tea.Cmd {
	s.seq++
	tick := searchTickMsg{kind: s.kind, seq: s.seq, term: s.input.Value()}
	return tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return tick
	})
}

func (s *BrowseScreen) setTab(step int) tea.Cmd {
	if s.browser == nil {
		return nil
	}
	current := lo.IndexOf(services.Tabs, s.browser.State().Tab)
	next := services.Tabs[(current+step+len(services.Tabs))%len(services.Tabs)]
	s.loading = true
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return viewModelMsg{kind: s.kind, vm: s.browser.SetActiveFilter(s.ctx, next)}
	})
}

func (s *BrowseScreen) search(term string) tea.Cmd {
	return func() tea.Msg {
		if s.browser == nil {
			return viewModelMsg{kind: s.kind}
		}
		return viewModelMsg{kind: s.kind, vm: s.browser.SetSearchTerm(s.ctx, term)}
	}
}

func (s *BrowseScreen) refresh() tea.Msg {
	if s.browser == nil {
		return viewModelMsg{kind: s.kind, vm: services.ViewModel{Message: "Nothing to show."}}
	}
	return viewModelMsg{kind: s.kind, vm: s.browser.Refresh(s.ctx)}
}
