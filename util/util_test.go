package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		Convey("Singular for exactly one", func() {
			So(Quantify(1, "viewer", "viewers"), ShouldEqual, "1 viewer")
		})

		Convey("Plural otherwise", func() {
			So(Quantify(0, "viewer", "viewers"), ShouldEqual, "0 viewers")
			So(Quantify(245, "viewer", "viewers"), ShouldEqual, "245 viewers")
		})
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("offline"), ShouldEqual, "Offline")
		So(Capitalize(""), ShouldEqual, "")
		So(Capitalize("Live"), ShouldEqual, "Live")
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		Convey("Under an hour renders MM:SS", func() {
			So(FormatClock(0), ShouldEqual, "0:00")
			So(FormatClock(300), ShouldEqual, "5:00")
			So(FormatClock(301), ShouldEqual, "5:01")
			So(FormatClock(3599), ShouldEqual, "59:59")
		})

		Convey("An hour and above renders H:MM:SS", func() {
			So(FormatClock(3600), ShouldEqual, "1:00:00")
			So(FormatClock(3723), ShouldEqual, "1:02:03")
			So(FormatClock(36000), ShouldEqual, "10:00:00")
		})

		Convey("Negative input clamps to zero", func() {
			So(FormatClock(-5), ShouldEqual, "0:00")
		})
	})
}

func TestParseClock(t *testing.T) {
	Convey("ParseClock", t, func() {
		Convey("Accepts MM:SS", func() {
			seconds, err := ParseClock("5:00")
			So(err, ShouldBeNil)
			So(seconds, ShouldEqual, 300)
		})

		Convey("Accepts H:MM:SS", func() {
			seconds, err := ParseClock("1:02:03")
			So(err, ShouldBeNil)
			So(seconds, ShouldEqual, 3723)
		})

		Convey("Round-trips with FormatClock", func() {
			for _, seconds := range []int{0, 59, 300, 3599, 3600, 86399} {
				parsed, err := ParseClock(FormatClock(seconds))
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, seconds)
			}
		})

		Convey("Rejects malformed input", func() {
			for _, clock := range []string{"", "5", "1:2:3:4", "five:00", "-1:00"} {
				_, err := ParseClock(clock)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Max and Min", t, func() {
		So(Max(1, 3, 2), ShouldEqual, 3)
		So(Min(1, 3, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]

		Convey("Push and Pop preserve LIFO ordering", func() {
			s.Push(1)
			s.Push(2)
			s.Push(3)
			So(s.Len(), ShouldEqual, 3)
			So(s.Pop(), ShouldEqual, 3)
			So(s.Peek(), ShouldEqual, 2)
			So(s.Len(), ShouldEqual, 2)
		})

		Convey("Pop on empty returns the zero value", func() {
			So(s.Pop(), ShouldEqual, 0)
		})

		Convey("Clear empties the stack", func() {
			s.Push(1)
			s.Clear()
			So(s.Len(), ShouldEqual, 0)
		})
	})
}
