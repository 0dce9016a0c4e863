package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/streamer459/streamingdev-sub000/util"
)

// Stream is the server's snapshot of a channel's broadcast state.
type Stream struct {
	ID            string `json:"id" jsonschema:"description=Identifier of the active stream. Empty while the channel is offline."`
	Title         string `json:"title" jsonschema:"description=Broadcast title set by the channel owner."`
	IsLive        bool   `json:"isLive" jsonschema:"description=Whether the channel is currently broadcasting."`
	Uptime        string `json:"uptime" jsonschema:"description=Elapsed broadcast time as a clock string (MM:SS or H:MM:SS). Empty while offline."`
	ViewerCount   int    `json:"viewerCount" jsonschema:"description=Number of currently registered viewers."`
	FollowerCount int    `json:"followerCount" jsonschema:"description=Number of accounts following the channel."`
	PlaybackURL   string `json:"playbackUrl" jsonschema:"description=Absolute URL of the HLS master playlist."`
	Bio           string `json:"bio" jsonschema:"description=Channel description."`
	Thumbnail     string `json:"thumbnail" jsonschema:"description=URL of the current stream thumbnail."`
}

// UptimeSeconds parses the server-reported uptime clock into whole seconds.
// An offline stream (empty clock) yields zero.
func (s *Stream) UptimeSeconds() int {
	if s.Uptime == "" {
		return 0
	}
	seconds, err := util.ParseClock(s.Uptime)
	if err != nil {
		return 0
	}
	return seconds
}

// LiveChannel is one entry of the live-channel directory.
type LiveChannel struct {
	Username    string `json:"username" jsonschema:"description=Channel name."`
	Title       string `json:"title" jsonschema:"description=Broadcast title."`
	ViewerCount int    `json:"viewerCount" jsonschema:"description=Number of currently registered viewers."`
	Uptime      string `json:"uptime" jsonschema:"description=Elapsed broadcast time as a clock string."`
	Thumbnail   string `json:"thumbnail" jsonschema:"description=URL of the current stream thumbnail."`
}

func (c LiveChannel) String() string {
	return fmt.Sprintf("%s - %s (%s)", c.Username, c.Title, util.Quantify(c.ViewerCount, "viewer", "viewers"))
}

// StreamInfo fetches the broadcast snapshot for a channel.
// A channel that does not exist yields ErrNotFound.
func (c *Client) StreamInfo(ctx context.Context, channel string) (*Stream, error) {
	var stream Stream
	path := fmt.Sprintf("/user/%s/stream", url.PathEscape(channel))
	if err := c.request(ctx, "GET", path, nil, &stream); err != nil {
		return nil, err
	}
	return &stream, nil
}

// LiveChannels fetches the directory of channels currently broadcasting.
func (c *Client) LiveChannels(ctx context.Context) ([]LiveChannel, error) {
	var channels []LiveChannel
	if err := c.request(ctx, "GET", "/streams/live", nil, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}
