package cmd

import (
	"fmt"
	"strings"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a title with its episodes or chapters",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)
		limit, _ := cmd.Flags().GetInt("limit")

		withRuntime(func(rt *runtime) {
			view, err := rt.controller.LoadDetail(cmd.Context(), kind, args[0])
			if err != nil {
				fail(err)
				return
			}

			item := view.Item
			fmt.Println(titleStyle.Render(item.Title))
			meta := []string{item.Status}
			if item.Year > 0 {
				meta = append(meta, fmt.Sprintf("%d", item.Year))
			}
			meta = append(meta, "score "+scoreText(item))
			fmt.Println(mutedStyle.Render(strings.Join(meta, " • ")))
			if len(item.Genres) > 0 {
				fmt.Println(strings.Join(item.Genres, ", "))
			}
			fmt.Println()
			fmt.Println(item.Description)
			fmt.Println()
			fmt.Println(view.FavoriteLabel())
			if first, ok := view.First.Get(); ok {
				fmt.Printf("%s first: %s (%s)\n", startVerb(kind), first.Label(), first.ID)
			}
			if last, ok := view.Continue.Get(); ok {
				fmt.Printf("Continue: %s (%s)\n", last.Label(), last.ID)
			}
			if view.Message != "" {
				fmt.Println("⚠ " + view.Message)
			}

			entries := view.Feed.Entries
			fmt.Printf("\n%d entries\n", len(entries))
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			for _, e := range entries {
				line := e.Label()
				if e.Title != "" {
					line += ": " + e.Title
				}
				fmt.Printf("  %s %s\n", mutedStyle.Render(e.ID), line)
			}
		})
	},
}

func startVerb(kind data.MediaKind) string {
	if kind == data.KindAnime {
		return "Watch"
	}
	return "Read"
}

func init() {
	addKindFlag(showCmd)
	showCmd.Flags().IntP("limit", "n", 20, "entries to print, 0 for all")
}
