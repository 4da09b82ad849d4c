package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/spf13/cobra"
)

var (
	purple = lipgloss.Color("99")

	headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8505B")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func addKindFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("kind", "k", string(data.KindManga), "media kind: anime or manga")
}

func kindFlag(cmd *cobra.Command) (data.MediaKind, error) {
	raw, err := cmd.Flags().GetString("kind")
	if err != nil {
		return "", err
	}
	return data.ParseKind(raw)
}

// fail prints the user-facing rendering of err. Catalog failures are not
// fatal for the process.
func fail(err error) {
	if msg := services.UserMessage(err); msg != "" {
		fmt.Println("⚠ " + msg)
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func scoreText(item data.MediaItem) string {
	if score, ok := item.Score.Get(); ok {
		return fmt.Sprintf("%.1f", score)
	}
	return "-"
}

func printItems(vm services.ViewModel) {
	if len(vm.Items) == 0 {
		fmt.Println(vm.Message)
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			default:
				return cellStyle
			}
		}).
		Headers("#", "Title", "Status", "Score", "ID")

	for i, item := range vm.Items {
		t.Row(fmt.Sprintf("%d", i+1), truncateString(item.Title, 48), item.Status, scoreText(item), item.ID)
	}

	fmt.Println(t)
}

func printReader(view services.ReaderView) {
	fmt.Println(titleStyle.Render(view.Heading()))

	prev, next := "—", "—"
	if e, ok := view.Adjacent.Previous.Get(); ok {
		prev = fmt.Sprintf("%s (%s)", e.Label(), e.ID)
	}
	if e, ok := view.Adjacent.Next.Get(); ok {
		next = fmt.Sprintf("%s (%s)", e.Label(), e.ID)
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("previous: %s • next: %s", prev, next)))
	if view.Kind == data.KindManga {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("quality: %s", view.Quality)))
	}
	fmt.Println()

	if len(view.URLs) == 0 {
		fmt.Println("Nothing to show for this entry.")
		return
	}
	fmt.Println(strings.Join(view.URLs, "\n"))
}
