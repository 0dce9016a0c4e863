package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamer459/streamingdev-sub000/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	// Distinct channel names per assertion branch: the in-memory store persists
	// across Convey leaf re-runs.
	Convey("Watched-channel history", t, func() {
		Convey("Saving persists the record under the lowercased name", func() {
			So(Save("Hasan", "late night coding", "720p"), ShouldBeNil)

			channels, err := Get()
			So(err, ShouldBeNil)
			So(channels["hasan"], ShouldNotBeNil)
			So(channels["hasan"].Name, ShouldEqual, "Hasan")
			So(channels["hasan"].Title, ShouldEqual, "late night coding")
			So(channels["hasan"].Quality, ShouldEqual, "720p")
			So(channels["hasan"].Visits, ShouldEqual, 1)
		})

		Convey("A rewatch bumps the visit count and keeps the quality when unspecified", func() {
			So(Save("pokimane", "first stream", "1080p"), ShouldBeNil)
			So(Save("pokimane", "second stream", ""), ShouldBeNil)

			channels, err := Get()
			So(err, ShouldBeNil)
			So(channels["pokimane"].Visits, ShouldEqual, 2)
			So(channels["pokimane"].Title, ShouldEqual, "second stream")
			So(channels["pokimane"].Quality, ShouldEqual, "1080p")
		})

		Convey("An explicit quality switch on rewatch replaces the stored one", func() {
			So(Save("lirik", "vods", "1080p"), ShouldBeNil)
			So(Save("lirik", "vods", "480p"), ShouldBeNil)

			channels, err := Get()
			So(err, ShouldBeNil)
			So(channels["lirik"].Quality, ShouldEqual, "480p")
		})

		Convey("Remove deletes the record", func() {
			So(Save("shroud", "fps", "auto"), ShouldBeNil)

			channels, err := Get()
			So(err, ShouldBeNil)
			So(Remove(channels["shroud"]), ShouldBeNil)

			channels, err = Get()
			So(err, ShouldBeNil)
			So(channels["shroud"], ShouldBeNil)
		})
	})
}
