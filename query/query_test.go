package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/key"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestRememberSuggest(t *testing.T) {
	Convey("Given remembered channel searches", t, func() {
		So(Remember("Hasan", 1), ShouldBeNil)
		So(Remember("hasan", 2), ShouldBeNil)
		So(Remember("hasanita", 1), ShouldBeNil)

		Convey("Suggestions are ranked by popularity", func() {
			suggestions := SuggestMany("hasan")
			So(len(suggestions), ShouldBeGreaterThanOrEqualTo, 2)
			So(suggestions[0], ShouldEqual, "hasan")
		})

		Convey("Suggest returns the top match", func() {
			So(Suggest("hasan").MustGet(), ShouldEqual, "hasan")
		})

		Convey("Unmatched input yields nothing", func() {
			So(Suggest("zzzz").IsAbsent(), ShouldBeTrue)
		})

		Convey("Whitespace in queries is stripped", func() {
			So(Remember("  Space Name  ", 1), ShouldBeNil)
			So(Suggest("spacename").MustGet(), ShouldEqual, "spacename")
		})

		Convey("Suggestions can be disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(SuggestMany("hasan"), ShouldBeEmpty)
			viper.Set(key.SearchShowQuerySuggestions, true)
		})
	})
}
