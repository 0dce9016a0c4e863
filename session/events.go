package session

import "github.com/streamer459/streamingdev-sub000/hls"

// EventKind classifies outbound session notifications.
type EventKind int

const (
	// EventUpdate signals that the snapshot changed and views should
	// re-render. Updates are coalesced: consumers pull the current state
	// with Snapshot, so a dropped update loses nothing.
	EventUpdate EventKind = iota

	// EventNotice carries a short human-readable message for status lines.
	EventNotice

	// EventEnded signals that the viewer closed the player and the watch
	// session is over.
	EventEnded
)

// Event is an outbound notification to whatever shell renders the session.
type Event struct {
	Kind   EventKind
	Notice string
}

// Snapshot is a consistent copy of the observable session state.
type Snapshot struct {
	Channel string
	State   State

	// Live is the local liveness view. A fatal playback error flips it
	// false even while the server still reports the stream as up.
	Live bool

	Title     string
	Bio       string
	Viewers   int
	Followers int

	// UptimeSeconds is zero whenever Live is false.
	UptimeSeconds int
	// Uptime is UptimeSeconds rendered as MM:SS, or H:MM:SS past an hour.
	Uptime string

	Quality  string
	Variants []hls.Variant
	Joined   bool
}
