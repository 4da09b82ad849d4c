package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/spf13/cobra"
)

var favCmd = &cobra.Command{
	Use:   "fav [id]",
	Short: "Add a title to favorites, or remove it if already there",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			on, err := rt.controller.ToggleFavorite(kind, args[0])
			if err != nil {
				fail(err)
				return
			}
			if on {
				fmt.Printf("★ Added %s to favorites\n", args[0])
			} else {
				fmt.Printf("☆ Removed %s from favorites\n", args[0])
			}
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently watched episodes or read chapters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			history := rt.controller.History(kind)
			if len(history) == 0 {
				fmt.Printf("🕘 You haven't %s anything yet\n", kind.Verb())
				return
			}

			columns := []table.Column{
				{Title: "Title", Width: 40},
				{Title: "Entry", Width: 20},
				{Title: "When", Width: 14},
				{Title: "IDs", Width: 30},
			}

			rows := []table.Row{}
			for _, h := range history {
				rows = append(rows, table.Row{
					truncateString(h.Title, 38),
					h.Label,
					time.UnixMilli(h.Timestamp).Format("Jan 2 15:04"),
					truncateString(h.MediaID+" "+h.EntryID, 30),
				})
			}

			t := table.New(
				table.WithColumns(columns),
				table.WithRows(rows),
				table.WithFocused(false),
				table.WithHeight(len(rows)),
			)

			s := table.DefaultStyles()
			s.Header = s.Header.
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				BorderBottom(true).
				Bold(true)
			s.Selected = s.Selected.
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(false)
			t.SetStyles(s)

			fmt.Printf("\n🕘 History (%d)\n\n", len(history))
			fmt.Println(t.View())
		})
	},
}

var qualityCmd = &cobra.Command{
	Use:   "quality [data|data-saver]",
	Short: "Set or toggle the manga page quality",
	Long:  "Without an argument the current quality is toggled between data and data-saver.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var q data.Quality
		if len(args) == 1 {
			q = data.Quality(args[0])
			if !q.Valid() {
				cobra.CheckErr(fmt.Errorf("unknown quality %q (want data or data-saver)", args[0]))
			}
		}

		withRuntime(func(rt *runtime) {
			if q != "" {
				if err := rt.controller.Library().SetQuality(q); err != nil {
					fail(err)
					return
				}
				fmt.Printf("Quality: %s\n", q)
				return
			}

			q, err := rt.controller.ToggleQuality()
			if err != nil {
				fail(err)
				return
			}
			fmt.Printf("Quality: %s\n", q)
		})
	},
}

func init() {
	addKindFlag(favCmd)
	addKindFlag(historyCmd)
}
