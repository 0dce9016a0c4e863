// Package inline implements the application's non-interactive, scriptable execution mode.
package inline

import (
	"io"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/util"
)

// ChannelPicker selects one channel out of the live directory.
type ChannelPicker func([]api.LiveChannel) *api.LiveChannel

// Options configure a single inline run.
type Options struct {
	// Out receives the rendered result. Defaults to stdout.
	Out io.Writer

	// Channels to report on. When empty, the live directory is listed
	// instead, narrowed by ChannelPicker if one is set.
	Channels []string

	// Json switches the output to a single JSON document.
	Json bool

	// IncludeProfile attaches the public profile to each report.
	IncludeProfile bool

	// IncludeVariants resolves the master playlist of live channels and
	// attaches the advertised renditions.
	IncludeVariants bool

	// Watch starts playback for the single requested channel and streams
	// status transitions to Out until the viewer closes the player.
	Watch bool

	ChannelPicker mo.Option[ChannelPicker]
}

// ParseChannelPicker parses a picker description.
// Format: "first", "last", "[number]" (index, from 0) or an exact channel name.
func ParseChannelPicker(description string) (ChannelPicker, error) {
	switch description {
	case "first":
		return func(channels []api.LiveChannel) *api.LiveChannel {
			if len(channels) == 0 {
				return nil
			}
			return &channels[0]
		}, nil
	case "last":
		return func(channels []api.LiveChannel) *api.LiveChannel {
			if len(channels) == 0 {
				return nil
			}
			return &channels[len(channels)-1]
		}, nil
	}

	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(channels []api.LiveChannel) *api.LiveChannel {
			if len(channels) == 0 {
				return nil
			}
			i := util.Min(idx, uint64(len(channels)-1))
			return &channels[i]
		}, nil
	}

	return func(channels []api.LiveChannel) *api.LiveChannel {
		for i := range channels {
			if strings.EqualFold(channels[i].Username, description) {
				return &channels[i]
			}
		}
		return nil
	}, nil
}
