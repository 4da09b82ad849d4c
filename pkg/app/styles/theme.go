package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	Primary    = lipgloss.Color("#E8505B")
	Secondary  = lipgloss.Color("#F9A825")
	Success    = lipgloss.Color("#8BC34A")
	Warning    = lipgloss.Color("#FFCA28")
	Error      = lipgloss.Color("#EF5350")
	Info       = lipgloss.Color("#4FC3F7")
	Muted      = lipgloss.Color("#6B7280")
	Background = lipgloss.Color("#1F2430")
	Foreground = lipgloss.Color("#ECEFF4")

	RoundedBorder = lipgloss.RoundedBorder()
	ThickBorder   = lipgloss.ThickBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			BorderStyle(RoundedBorder).
			BorderForeground(Primary).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 2)

	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(0, 2)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	GenreStyle = lipgloss.NewStyle().
			Foreground(Info)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(lipgloss.Color("#2E3440")).
			Padding(0, 2).
			Bold(true)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	// Buttons for prev/next; disabled ones stay visible but greyed out.
	ButtonStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Primary).
			Padding(0, 2)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Background(lipgloss.Color("#2E3440")).
				Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	InputStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)
)

// StatusStyle colors a normalized media status label.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "releasing", "ongoing":
		return lipgloss.NewStyle().Foreground(Info).Bold(true)
	case "finished", "completed":
		return lipgloss.NewStyle().Foreground(Success).Bold(true)
	case "cancelled", "hiatus":
		return ErrorStyle
	case "not yet released":
		return lipgloss.NewStyle().Foreground(Warning)
	default:
		return MutedStyle
	}
}

func Button(label string, enabled bool) string {
	if enabled {
		return ButtonStyle.Render(label)
	}
	return DisabledButtonStyle.Render(label)
}
