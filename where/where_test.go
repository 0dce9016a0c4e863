package where

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamer459/streamingdev-sub000/filesystem"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Avatars()", func() {
			path := Avatars()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("File paths live under resolved directories", func() {
			So(strings.HasPrefix(History(), Config()), ShouldBeTrue)
			So(strings.HasPrefix(Quality(), Config()), ShouldBeTrue)
			So(strings.HasPrefix(Viewer(), Config()), ShouldBeTrue)
			So(strings.HasPrefix(Profiles(), Cache()), ShouldBeTrue)
			So(strings.HasPrefix(Queries(), Cache()), ShouldBeTrue)
		})
	})
}
