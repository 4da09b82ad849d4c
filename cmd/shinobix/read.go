package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:     "read [media-id] [entry-id]",
	Aliases: []string{"watch"},
	Short:   "Print the pages of a chapter or the stream of an episode",
	Long:    "Open an entry and record it as your last position. Without an entry id the first episode or oldest chapter is opened.",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			ctx := cmd.Context()
			mediaID := args[0]

			var entryID string
			if len(args) == 2 {
				entryID = args[1]
			} else {
				detail, err := rt.controller.LoadDetail(ctx, kind, mediaID)
				if err != nil {
					fail(err)
					return
				}
				first, ok := detail.First.Get()
				if !ok {
					fmt.Println("⚠ Nothing to open for this title yet.")
					return
				}
				entryID = first.ID
			}

			view, err := rt.controller.OpenEntry(ctx, kind, mediaID, entryID)
			if err != nil {
				fail(err)
				return
			}
			printReader(view)
		})
	},
}

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Reopen the last episode or chapter",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := kindFlag(cmd)
		cobra.CheckErr(err)

		withRuntime(func(rt *runtime) {
			view, err := rt.controller.Continue(cmd.Context(), kind)
			if err != nil {
				fail(err)
				return
			}
			printReader(view)
		})
	},
}

func init() {
	addKindFlag(readCmd)
	addKindFlag(continueCmd)
}
