// Package push maintains a WebSocket subscription to the platform's notification
// service. The client uses it to invalidate cached profiles and to surface
// live/offline notices; everything else the service broadcasts is ignored.
package push

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
	"github.com/streamer459/streamingdev-sub000/constant"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/log"
)

// EventType discriminates push frames.
type EventType string

const (
	ProfileUpdated EventType = "profile.updated"
	StreamOnline   EventType = "stream.online"
	StreamOffline  EventType = "stream.offline"
)

// Event is one notification frame from the push service.
type Event struct {
	Type     EventType `json:"type"`
	Username string    `json:"username"`
}

// Listener subscribes to the push endpoint and re-dials after connection loss.
type Listener struct {
	// URL is the full WebSocket endpoint.
	URL string

	// RetryWait is the pause between reconnect attempts.
	RetryWait time.Duration

	dialer *websocket.Dialer
}

// New returns a listener for the configured push service.
func New() *Listener {
	base := strings.TrimSuffix(viper.GetString(key.APIPush), "/")
	return NewWith(base + "/push")
}

// NewWith returns a listener for an explicit endpoint.
func NewWith(url string) *Listener {
	return &Listener{
		URL:       url,
		RetryWait: 5 * time.Second,
		dialer:    websocket.DefaultDialer,
	}
}

// Listen opens the subscription and emits decoded events until the context is
// canceled. Connection loss triggers silent re-dials; the returned channel closes only
// when the context ends.
func (l *Listener) Listen(ctx context.Context) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		for {
			if err := l.run(ctx, events); err != nil {
				log.Debugf("push connection lost: %v", err)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(l.RetryWait):
			}
		}
	}()

	return events
}

// run performs one dial-read cycle, returning when the connection drops or the
// context is canceled.
func (l *Listener) run(ctx context.Context, events chan<- Event) error {
	header := map[string][]string{"User-Agent": {constant.UserAgent}}
	conn, _, err := l.dialer.DialContext(ctx, l.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Reads block without a deadline, so unblock them when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		if event.Type == "" {
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
