package session

// State is the lifecycle phase of a watch session.
type State int

const (
	// StateIdle means no channel is being watched.
	StateIdle State = iota

	// StateLoading means a channel was just selected and the first
	// broadcast snapshot is still in flight.
	StateLoading

	// StateOffline means the channel exists but is not broadcasting.
	// Polling continues so a stream that comes up is noticed.
	StateOffline

	// StateInitializing means the channel is live and playback is being
	// prepared (variant resolution, player startup).
	StateInitializing

	// StateWatching means the player holds the stream.
	StateWatching

	// StateNotFound means the channel does not exist. Terminal until the
	// watched channel changes.
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateOffline:
		return "offline"
	case StateInitializing:
		return "initializing"
	case StateWatching:
		return "watching"
	case StateNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// live reports whether the session considers the channel live right now.
// This is the local view: a fatal playback error flips it false even
// though the server may still report the stream as up.
func (s State) live() bool {
	return s == StateInitializing || s == StateWatching
}
