package inline

import (
	"encoding/json"
	"io"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/hls"
)

// ChannelStatus is the inline report for a single channel.
type ChannelStatus struct {
	// Channel is the channel name the report is about.
	Channel string `json:"channel" jsonschema:"description=Channel name the report is about."`
	// Found is false when the platform does not know the channel.
	Found bool `json:"found" jsonschema:"description=Whether the channel exists on the platform."`
	// Stream is the broadcast snapshot. Absent when the channel does not exist.
	Stream *api.Stream `json:"stream,omitempty" jsonschema:"description=Broadcast snapshot. Absent when the channel does not exist."`
	// Profile is the public profile (optional).
	Profile *api.Profile `json:"profile,omitempty" jsonschema:"description=Public profile. Present only when requested."`
	// AvatarPath is the local cache path of the profile picture (optional).
	AvatarPath string `json:"avatarPath,omitempty" jsonschema:"description=Local cache path of the profile picture. Present only with the profile."`
	// Variants lists the renditions the master playlist advertises (optional).
	Variants []hls.Variant `json:"variants,omitempty" jsonschema:"description=Renditions of the HLS master playlist. Present only when requested and live."`
}

// Output is the top-level document inline mode emits with the json flag.
type Output struct {
	Result []*ChannelStatus `json:"result"`
}

func writeJson(out io.Writer, statuses []*ChannelStatus) error {
	if statuses == nil {
		statuses = []*ChannelStatus{}
	}

	data, err := json.Marshal(&Output{Result: statuses})
	if err != nil {
		return err
	}

	_, err = out.Write(data)
	return err
}
