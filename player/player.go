// Package player defines a unified abstraction layer for media playback engines.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package player

import (
	"runtime"

	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/key"
)

// Event is a coarse playback state notification emitted by a backend.
type Event int

const (
	// EventPlaying fires when playback starts or resumes advancing.
	EventPlaying Event = iota

	// EventPaused fires when the user suspends playback.
	EventPaused

	// EventEnded fires when the media ends or the engine goes idle.
	EventEnded
)

func (e Event) String() string {
	switch e {
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Player encapsulates the required capabilities for a media playback backend.
type Player interface {
	// Play starts playback of the given URL with the specified title.
	Play(url string, title string, headers map[string]string) error

	// SwitchSource loads a new URL into the running instance, keeping the
	// window and process alive. Playback restarts from the live edge of the
	// new source.
	SwitchSource(url string) error

	// TogglePause inverts the current playback suspension state.
	TogglePause() error

	// GetTimePos retrieves the current absolute playback position in seconds.
	GetTimePos() (float64, error)

	// GetPausedStatus retrieves the current suspension state of the playback engine.
	GetPausedStatus() (bool, error)

	// HasActivePlayback verifies if the player has a media file currently initialized and active.
	HasActivePlayback() (bool, error)

	// Seek transitions the playback position to a specific absolute timestamp in seconds.
	Seek(seconds float64) error

	// IsRunning validates the liveness of the underlying playback process or handler.
	IsRunning() bool

	// Close terminates the playback engine and releases all associated
	// system resources. Safe to call more than once.
	Close() error

	// Socket retrieves the identifier for the Inter-Process Communication (IPC) channel.
	Socket() string

	// Events returns a channel of playback state notifications. Backends
	// without event support return a channel that never yields.
	Events() <-chan Event

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}
}

// FromConfig returns the playback backend selected by configuration.
func FromConfig() Player {
	if viper.GetString(key.Player) == "iina" && runtime.GOOS == "darwin" {
		return NewIINA()
	}

	return NewMPV()
}
