package prefs

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamer459/streamingdev-sub000/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuality(t *testing.T) {
	Convey("Given per-channel quality preferences", t, func() {
		Convey("An unset channel has no preference", func() {
			So(Quality("nobody").IsAbsent(), ShouldBeTrue)
		})

		Convey("A saved preference round-trips", func() {
			So(SetQuality("Hasan", "720p"), ShouldBeNil)
			So(Quality("hasan").MustGet(), ShouldEqual, "720p")

			Convey("Channel lookup ignores case", func() {
				So(Quality("HASAN").MustGet(), ShouldEqual, "720p")
			})

			Convey("A later switch replaces the value", func() {
				So(SetQuality("hasan", "480p"), ShouldBeNil)
				So(Quality("hasan").MustGet(), ShouldEqual, "480p")
			})

			Convey("ForgetQuality clears it", func() {
				So(ForgetQuality("hasan"), ShouldBeNil)
				So(Quality("hasan").IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestViewerID(t *testing.T) {
	Convey("Given the persistent viewer identifier", t, func() {
		first, err := ViewerID()
		So(err, ShouldBeNil)
		So(first, ShouldNotBeEmpty)

		Convey("Repeated calls return the same identifier", func() {
			second, err := ViewerID()
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
		})
	})
}
