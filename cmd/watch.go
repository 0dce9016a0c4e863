// Package cmd implements the command-line interface for streamwatch.
package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/streamer459/streamingdev-sub000/inline"
	"github.com/streamer459/streamingdev-sub000/tui"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolP("no-tui", "n", false, "Stream plain status lines instead of opening the full interface")
}

// watchCmd starts playback of a channel right away.
var watchCmd = &cobra.Command{
	Use:               "watch [channel]",
	Short:             "Watch a channel right away",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionChannels,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		if lo.Must(cmd.Flags().GetBool("no-tui")) {
			options := &inline.Options{
				Out:           os.Stdout,
				Channels:      args,
				Watch:         true,
				ChannelPicker: mo.None[inline.ChannelPicker](),
			}
			handleErr(inline.Run(cmd.Context(), options))
			return
		}

		handleErr(tui.Run(&tui.Options{Channel: args[0]}))
	},
}
