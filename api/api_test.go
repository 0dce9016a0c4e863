package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStreamInfo(t *testing.T) {
	Convey("Given a platform API serving stream snapshots", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/user/hasan/stream":
				json.NewEncoder(w).Encode(Stream{
					ID:            "st-991",
					Title:         "late night coding",
					IsLive:        true,
					Uptime:        "1:02:03",
					ViewerCount:   42,
					FollowerCount: 1200,
					PlaybackURL:   "https://media.example/hls/hasan/index.m3u8",
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		client := NewWith(srv.URL, srv.Client())

		Convey("A live channel decodes fully", func() {
			stream, err := client.StreamInfo(context.Background(), "hasan")
			So(err, ShouldBeNil)
			So(stream.ID, ShouldEqual, "st-991")
			So(stream.IsLive, ShouldBeTrue)
			So(stream.UptimeSeconds(), ShouldEqual, 3723)
			So(stream.ViewerCount, ShouldEqual, 42)
		})

		Convey("An unknown channel yields ErrNotFound", func() {
			_, err := client.StreamInfo(context.Background(), "nobody")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestViewerCalls(t *testing.T) {
	Convey("Given a platform API tracking viewers", t, func() {
		var (
			lastPath string
			lastBody viewerRequest
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&lastBody)
			json.NewEncoder(w).Encode(JoinResult{Success: true, ViewerCount: 7})
		}))
		defer srv.Close()

		client := NewWith(srv.URL, srv.Client())

		Convey("Join posts the viewer identifier to the stream's join endpoint", func() {
			result, err := client.JoinStream(context.Background(), "st-1", "viewer-abc")
			So(err, ShouldBeNil)
			So(result.Success, ShouldBeTrue)
			So(result.ViewerCount, ShouldEqual, 7)
			So(lastPath, ShouldEqual, "/streams/st-1/join")
			So(lastBody.ViewerID, ShouldEqual, "viewer-abc")
		})

		Convey("Leave posts to the stream's leave endpoint", func() {
			_, err := client.LeaveStream(context.Background(), "st-1", "viewer-abc")
			So(err, ShouldBeNil)
			So(lastPath, ShouldEqual, "/streams/st-1/leave")
		})
	})
}

func TestAuthFlows(t *testing.T) {
	Convey("Given a platform API with authentication", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login":
				var creds Credentials
				json.NewDecoder(r.Body).Decode(&creds)
				if creds.Password != "hunter2" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				json.NewEncoder(w).Encode(Session{Token: "tok-123", Username: creds.Username})
			case "/me/following":
				if r.Header.Get("Authorization") != "Bearer tok-123" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				json.NewEncoder(w).Encode([]Profile{{Username: "hasan"}})
			}
		}))
		defer srv.Close()

		Convey("Login returns a session for valid credentials", func() {
			client := NewWith(srv.URL, srv.Client())
			session, err := client.Login(context.Background(), "viewer1", "hunter2")
			So(err, ShouldBeNil)
			So(session.Token, ShouldEqual, "tok-123")
			So(session.Username, ShouldEqual, "viewer1")
		})

		Convey("Login maps 401 to ErrUnauthorized", func() {
			client := NewWith(srv.URL, srv.Client())
			_, err := client.Login(context.Background(), "viewer1", "wrong")
			So(errors.Is(err, ErrUnauthorized), ShouldBeTrue)
		})

		Convey("An attached token source authorizes requests", func() {
			client := NewWith(srv.URL, srv.Client()).WithToken(func() (string, error) {
				return "tok-123", nil
			})
			following, err := client.Following(context.Background())
			So(err, ShouldBeNil)
			So(following, ShouldHaveLength, 1)
			So(following[0].Username, ShouldEqual, "hasan")
		})
	})
}

func TestStatusError(t *testing.T) {
	Convey("Given a platform API answering with server errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream exploded"))
		}))
		defer srv.Close()

		client := NewWith(srv.URL, srv.Client())

		Convey("The status and a body snippet are preserved", func() {
			_, err := client.LiveChannels(context.Background())
			var statusErr *StatusError
			So(errors.As(err, &statusErr), ShouldBeTrue)
			So(statusErr.Code, ShouldEqual, http.StatusBadGateway)
			So(statusErr.Error(), ShouldContainSubstring, "upstream exploded")
		})
	})
}
