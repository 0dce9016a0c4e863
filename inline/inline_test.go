package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/streamer459/streamingdev-sub000/api"
)

func TestChannelPicker(t *testing.T) {
	Convey("Given the live directory", t, func() {
		directory := []api.LiveChannel{
			{Username: "alpha"},
			{Username: "bravo"},
			{Username: "charlie"},
		}

		pickName := func(description string, channels []api.LiveChannel) string {
			picker, err := ParseChannelPicker(description)
			So(err, ShouldBeNil)

			choice := picker(channels)
			if choice == nil {
				return ""
			}
			return choice.Username
		}

		Convey("Edge rules pick the edges", func() {
			So(pickName("first", directory), ShouldEqual, "alpha")
			So(pickName("last", directory), ShouldEqual, "charlie")
		})

		Convey("Indexes are clamped to the directory", func() {
			So(pickName("1", directory), ShouldEqual, "bravo")
			So(pickName("99", directory), ShouldEqual, "charlie")
		})

		Convey("Anything else matches a name, case-insensitively", func() {
			So(pickName("BRAVO", directory), ShouldEqual, "bravo")
			So(pickName("nobody", directory), ShouldEqual, "")
		})

		Convey("An empty directory yields no choice", func() {
			So(pickName("first", nil), ShouldEqual, "")
			So(pickName("0", nil), ShouldEqual, "")
		})
	})
}

func TestJsonOutput(t *testing.T) {
	Convey("writeJson", t, func() {
		Convey("Produces a valid document for an empty result", func() {
			var buf bytes.Buffer
			So(writeJson(&buf, nil), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 0)
			So(buf.String(), ShouldContainSubstring, `"result":[]`)
		})

		Convey("Round-trips a filled report", func() {
			var buf bytes.Buffer
			status := &ChannelStatus{
				Channel: "alpha",
				Found:   true,
				Stream:  &api.Stream{Title: "speedrun night", IsLive: true},
			}
			So(writeJson(&buf, []*ChannelStatus{status}), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].Channel, ShouldEqual, "alpha")
			So(output.Result[0].Stream.Title, ShouldEqual, "speedrun night")
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a platform with a live and an offline channel", t, func() {
		media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("#EXTM3U\n" +
				"#EXT-X-STREAM-INF:BANDWIDTH=6000000,RESOLUTION=1920x1080\n" +
				"1080p/index.m3u8\n" +
				"#EXT-X-STREAM-INF:BANDWIDTH=3000000,RESOLUTION=1280x720\n" +
				"720p/index.m3u8\n"))
		}))
		defer media.Close()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/user/alpha/stream":
				json.NewEncoder(w).Encode(api.Stream{
					ID:            "st-alpha",
					Title:         "speedrun night",
					IsLive:        true,
					Uptime:        "5:00",
					ViewerCount:   7,
					FollowerCount: 100,
					PlaybackURL:   media.URL + "/hls/alpha/index.m3u8",
				})
			case "/user/bravo/stream":
				json.NewEncoder(w).Encode(api.Stream{IsLive: false})
			case "/user/alpha/profile":
				json.NewEncoder(w).Encode(api.Profile{Username: "alpha", Bio: "pixel runner"})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		client := api.NewWith(srv.URL, srv.Client())
		ctx := context.Background()

		Convey("A live channel reports its snapshot", func() {
			status, err := report(ctx, client, "Alpha", &Options{})
			So(err, ShouldBeNil)
			So(status.Channel, ShouldEqual, "alpha")
			So(status.Found, ShouldBeTrue)
			So(status.Stream.IsLive, ShouldBeTrue)
			So(status.Profile, ShouldBeNil)
			So(status.Variants, ShouldBeEmpty)
		})

		Convey("Profile and variants attach when requested", func() {
			status, err := report(ctx, client, "alpha", &Options{
				IncludeProfile:  true,
				IncludeVariants: true,
			})
			So(err, ShouldBeNil)
			So(status.Profile.Bio, ShouldEqual, "pixel runner")
			So(status.Variants, ShouldHaveLength, 2)
			So(status.Variants[0].Name, ShouldEqual, "1080p")
		})

		Convey("Variants are skipped for offline channels", func() {
			status, err := report(ctx, client, "bravo", &Options{IncludeVariants: true})
			So(err, ShouldBeNil)
			So(status.Found, ShouldBeTrue)
			So(status.Stream.IsLive, ShouldBeFalse)
			So(status.Variants, ShouldBeEmpty)
		})

		Convey("A missing channel is a report, not an error", func() {
			status, err := report(ctx, client, "nobody", &Options{})
			So(err, ShouldBeNil)
			So(status.Found, ShouldBeFalse)
			So(status.Stream, ShouldBeNil)
		})

		Convey("Plain rendering covers all three outcomes", func() {
			var buf bytes.Buffer

			live, _ := report(ctx, client, "alpha", &Options{IncludeVariants: true})
			printStatus(&buf, live)
			So(buf.String(), ShouldContainSubstring, `alpha: live "speedrun night" up 5:00, 7 viewers`)
			So(buf.String(), ShouldContainSubstring, "1080p "+media.URL)

			buf.Reset()
			offline, _ := report(ctx, client, "bravo", &Options{})
			printStatus(&buf, offline)
			So(buf.String(), ShouldEqual, "bravo: offline\n")

			buf.Reset()
			missing, _ := report(ctx, client, "nobody", &Options{})
			printStatus(&buf, missing)
			So(buf.String(), ShouldEqual, "nobody: not found\n")
		})
	})
}
