// Package cmd implements the command-line interface for streamwatch.
package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/inline"
	"github.com/streamer459/streamingdev-sub000/query"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringSliceP("channel", "c", []string{}, "The channels to report the broadcast status of")
	inlineCmd.Flags().StringP("pick", "p", "", "Criteria for selecting one channel from the live directory")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("include-profile", "P", false, "Include the public channel profile in the structured output")
	inlineCmd.Flags().BoolP("include-variants", "V", false, "Resolve the HLS master playlist and include the advertised renditions")
	inlineCmd.Flags().BoolP("watch", "w", false, "Start playback of the single requested channel and stream status lines")

	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	inlineCmd.RegisterFlagCompletionFunc("channel", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Initialize the application for automated execution and data extraction using inline mode.

Channel pickers (for the live directory, when no channel is given):
  first - channel with the most viewers
  last - channel with the fewest viewers
  [number] - select channel by index (starting from 0)
  [name] - select channel by exact name

When the channel flag is given, the live directory is skipped and each
named channel is reported directly.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		channels, _ := cmd.Flags().GetStringSlice("channel")

		if watch && len(channels) != 1 {
			handleErr(errors.New("watch requires exactly one channel"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		output := lo.Must(cmd.Flags().GetString("output"))
		var (
			writer io.Writer
			err    error
		)
		if output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		} else {
			writer = os.Stdout
		}

		pickFlag := lo.Must(cmd.Flags().GetString("pick"))
		channelPicker := mo.None[inline.ChannelPicker]()
		if pickFlag != "" {
			fn, err := inline.ParseChannelPicker(pickFlag)
			handleErr(err)
			channelPicker = mo.Some(fn)
		}

		options := &inline.Options{
			Out:             writer,
			Channels:        lo.Must(cmd.Flags().GetStringSlice("channel")),
			Json:            lo.Must(cmd.Flags().GetBool("json")),
			IncludeProfile:  lo.Must(cmd.Flags().GetBool("include-profile")),
			IncludeVariants: lo.Must(cmd.Flags().GetBool("include-variants")),
			Watch:           lo.Must(cmd.Flags().GetBool("watch")),
			ChannelPicker:   channelPicker,
		}

		handleErr(inline.Run(cmd.Context(), options))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates JSON schemas for structured inline mode outputs.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "stream", "profile", "variant", "channelstatus", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&inline.Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
