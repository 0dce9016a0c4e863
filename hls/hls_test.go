package hls

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=6000000,RESOLUTION=1920x1080,CODECS="avc1.640028,mp4a.40.2"
1080p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=3000000,RESOLUTION=1280x720
720p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1200000,RESOLUTION=854x480
480p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=128000,NAME="audio"
audio/index.m3u8
`

func TestResolve(t *testing.T) {
	Convey("Given a media host serving a master playlist", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/hls/hasan/index.m3u8":
				fmt.Fprint(w, masterPlaylist)
			case "/hls/empty/index.m3u8":
				fmt.Fprint(w, "#EXTM3U\n#EXT-X-VERSION:3\n")
			case "/hls/bogus/index.m3u8":
				fmt.Fprint(w, "<html>not a playlist</html>")
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		resolver := NewResolverWith(srv.Client())

		Convey("All advertised variants are returned in order", func() {
			variants, err := resolver.Resolve(context.Background(), srv.URL+"/hls/hasan/index.m3u8")
			So(err, ShouldBeNil)
			So(variants, ShouldHaveLength, 4)
			So(variants[0].Name, ShouldEqual, "1080p")
			So(variants[1].Name, ShouldEqual, "720p")
			So(variants[2].Name, ShouldEqual, "480p")
			So(variants[3].Name, ShouldEqual, "audio")
		})

		Convey("Relative sub-playlist URIs resolve against the master URL", func() {
			variants, err := resolver.Resolve(context.Background(), srv.URL+"/hls/hasan/index.m3u8")
			So(err, ShouldBeNil)
			So(variants[1].URL, ShouldEqual, srv.URL+"/hls/hasan/720p/index.m3u8")
		})

		Convey("Bandwidth and resolution attributes are parsed", func() {
			variants, err := resolver.Resolve(context.Background(), srv.URL+"/hls/hasan/index.m3u8")
			So(err, ShouldBeNil)
			So(variants[0].Bandwidth, ShouldEqual, 6000000)
			So(variants[0].Resolution, ShouldEqual, "1920x1080")
			So(variants[3].Resolution, ShouldBeEmpty)
		})

		Convey("A playlist without variants yields an empty list", func() {
			variants, err := resolver.Resolve(context.Background(), srv.URL+"/hls/empty/index.m3u8")
			So(err, ShouldBeNil)
			So(variants, ShouldBeEmpty)
		})

		Convey("A non-playlist body is rejected", func() {
			_, err := resolver.Resolve(context.Background(), srv.URL+"/hls/bogus/index.m3u8")
			So(err, ShouldNotBeNil)
		})

		Convey("A missing playlist surfaces the HTTP status", func() {
			_, err := resolver.Resolve(context.Background(), srv.URL+"/hls/gone/index.m3u8")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "404")
		})
	})
}

func TestSelection(t *testing.T) {
	Convey("Given a resolved variant list", t, func() {
		variants := []Variant{
			{Name: "1080p", Bandwidth: 6000000},
			{Name: "720p", Bandwidth: 3000000},
			{Name: "audio", Bandwidth: 128000},
		}

		Convey("Pick matches by name, case-insensitively", func() {
			variant, ok := Pick(variants, "720P")
			So(ok, ShouldBeTrue)
			So(variant.Name, ShouldEqual, "720p")
		})

		Convey("Pick misses qualities that are not offered", func() {
			_, ok := Pick(variants, "480p")
			So(ok, ShouldBeFalse)
		})

		Convey("Best selects the highest bandwidth", func() {
			best, ok := Best(variants)
			So(ok, ShouldBeTrue)
			So(best.Name, ShouldEqual, "1080p")
		})

		Convey("Best on an empty list reports no variant", func() {
			_, ok := Best(nil)
			So(ok, ShouldBeFalse)
		})

		Convey("Names prepends auto for quality menus", func() {
			So(Names(variants), ShouldResemble, []string{"auto", "1080p", "720p", "audio"})
		})
	})
}

func TestMasterURL(t *testing.T) {
	Convey("MasterURL builds the canonical playlist location", t, func() {
		So(
			MasterURL("https://media.streamer459.live", "hasan"),
			ShouldEqual,
			"https://media.streamer459.live/hls/hasan/index.m3u8",
		)
		So(
			MasterURL("https://media.streamer459.live/", "hasan"),
			ShouldEqual,
			"https://media.streamer459.live/hls/hasan/index.m3u8",
		)
	})
}
