package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/push"
}

func TestListen(t *testing.T) {
	Convey("Given a push service", t, func() {
		upgrader := websocket.Upgrader{}

		Convey("Events are decoded and delivered", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				conn.WriteJSON(Event{Type: ProfileUpdated, Username: "hasan"})
				conn.WriteJSON(Event{Type: StreamOnline, Username: "lirik"})
				// Hold the connection open so the listener keeps reading.
				time.Sleep(500 * time.Millisecond)
				conn.Close()
			}))
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			listener := NewWith(wsURL(srv))
			listener.RetryWait = 50 * time.Millisecond
			events := listener.Listen(ctx)

			first := <-events
			So(first.Type, ShouldEqual, ProfileUpdated)
			So(first.Username, ShouldEqual, "hasan")

			second := <-events
			So(second.Type, ShouldEqual, StreamOnline)
			So(second.Username, ShouldEqual, "lirik")
		})

		Convey("A dropped connection is re-dialed", func() {
			var dials int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				attempt := atomic.AddInt32(&dials, 1)
				conn.WriteJSON(Event{Type: StreamOffline, Username: "hasan"})
				if attempt == 1 {
					conn.Close()
					return
				}
				time.Sleep(500 * time.Millisecond)
				conn.Close()
			}))
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			listener := NewWith(wsURL(srv))
			listener.RetryWait = 20 * time.Millisecond
			events := listener.Listen(ctx)

			<-events
			<-events
			So(atomic.LoadInt32(&dials), ShouldBeGreaterThanOrEqualTo, 2)
		})

		Convey("Canceling the context closes the event channel", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				time.Sleep(500 * time.Millisecond)
				conn.Close()
			}))
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			listener := NewWith(wsURL(srv))
			listener.RetryWait = 20 * time.Millisecond
			events := listener.Listen(ctx)

			cancel()

			select {
			case _, open := <-events:
				So(open, ShouldBeFalse)
			case <-time.After(2 * time.Second):
				So("event channel did not close", ShouldBeEmpty)
			}
		})
	})
}
