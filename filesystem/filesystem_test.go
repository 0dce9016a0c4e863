package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "MemMapFS")
		})

		Convey("GacheFs should write through the active backend", func() {
			SetMemMapFs()

			file, err := GacheFs{}.OpenFile("probe.json", os.O_CREATE|os.O_RDWR, 0655)
			So(err, ShouldBeNil)
			So(file, ShouldNotBeNil)
			So(file.Close(), ShouldBeNil)

			exists, err := API().Exists("probe.json")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
