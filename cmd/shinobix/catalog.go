package cmd

import (
	"strings"

	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search anime or manga",
	Long:  "Search AniList (anime) or MangaDex (manga) and display results in a table",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)
		tab, err := tabFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			b := rt.controller.Browser(kind)
			b.SetActiveFilter(cmd.Context(), tab)
			printItems(b.SetSearchTerm(cmd.Context(), strings.Join(args, " ")))
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List popular, top, new or favorite titles",
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)
		tab, err := tabFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			printItems(rt.controller.Browser(kind).SetActiveFilter(cmd.Context(), tab))
		})
	},
}

func tabFlag(cmd *cobra.Command) (services.Tab, error) {
	raw, err := cmd.Flags().GetString("tab")
	if err != nil {
		return "", err
	}
	return services.ParseTab(raw)
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, listCmd} {
		addKindFlag(c)
		c.Flags().StringP("tab", "t", string(services.TabAll), "all, top, new or fav")
	}
}
