package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// drain pops every buffered event without blocking.
func drain(m *MPV) []Event {
	var out []Event
	for {
		select {
		case e := <-m.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestMediaTargetSanitization(t *testing.T) {
	Convey("Sanitizing media targets", t, func() {
		Convey("Should accept http and https URLs", func() {
			for _, link := range []string{
				"http://media.streamer459.live/hls/hasan/index.m3u8",
				"https://media.streamer459.live/hls/hasan/720p/index.m3u8",
			} {
				got, err := sanitizeMediaTarget(link)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, link)
			}
		})

		Convey("Should reject empty input", func() {
			_, err := sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject targets that look like flags", func() {
			_, err := sanitizeMediaTarget("--vo=null")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject control characters", func() {
			_, err := sanitizeMediaTarget("https://example.com/a\nb")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject unsupported schemes", func() {
			_, err := sanitizeMediaTarget("rtmp://media.streamer459.live/live")
			So(err, ShouldNotBeNil)
		})

		Convey("Should clean local file paths", func() {
			got, err := sanitizeMediaTarget("/tmp/../tmp/clip.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/tmp/clip.mp4")
		})
	})

	Convey("Sanitizing titles", t, func() {
		So(sanitizeTitle("hasan \n live\t"), ShouldEqual, "hasan   live")
		So(sanitizeTitle("a\x00b"), ShouldEqual, "ab")
	})
}

func TestEventTranslation(t *testing.T) {
	Convey("Translating mpv notifications into playback events", t, func() {
		m := NewMPV()

		Convey("The initial observe_property echo is not a playback start", func() {
			m.handleEvent("pause", false)
			m.handleEvent("time-pos", nil)

			So(drain(m), ShouldBeEmpty)
		})

		Convey("First non-nil time-pos marks playback start", func() {
			m.handleEvent("time-pos", 0.04)

			So(drain(m), ShouldResemble, []Event{EventPlaying})
		})

		Convey("Subsequent time-pos ticks are collapsed", func() {
			m.handleEvent("time-pos", 0.04)
			m.handleEvent("time-pos", 1.1)
			m.handleEvent("time-pos", 2.2)

			So(drain(m), ShouldResemble, []Event{EventPlaying})
		})

		Convey("Pause and resume round-trip once playback started", func() {
			m.handleEvent("time-pos", 0.04)
			m.handleEvent("pause", true)
			m.handleEvent("pause", false)

			So(drain(m), ShouldResemble, []Event{EventPlaying, EventPaused, EventPlaying})
		})

		Convey("Duplicate pause notifications are collapsed", func() {
			m.handleEvent("time-pos", 0.04)
			m.handleEvent("pause", true)
			m.handleEvent("pause", true)

			So(drain(m), ShouldResemble, []Event{EventPlaying, EventPaused})
		})

		Convey("eof-reached emits an end event", func() {
			m.handleEvent("time-pos", 0.04)
			m.handleEvent("eof-reached", true)

			So(drain(m), ShouldResemble, []Event{EventPlaying, EventEnded})
		})

		Convey("eof-reached false is ignored", func() {
			m.handleEvent("eof-reached", false)

			So(drain(m), ShouldBeEmpty)
		})

		Convey("playback-restart while paused does not resume", func() {
			m.handleEvent("time-pos", 0.04)
			m.handleEvent("pause", true)
			m.handleEvent("playback-restart", map[string]interface{}{"event": "playback-restart"})

			So(drain(m), ShouldResemble, []Event{EventPlaying, EventPaused})
		})
	})

	Convey("Event names", t, func() {
		So(EventPlaying.String(), ShouldEqual, "playing")
		So(EventPaused.String(), ShouldEqual, "paused")
		So(EventEnded.String(), ShouldEqual, "ended")
	})
}

func TestCloseIdempotence(t *testing.T) {
	Convey("Closing a player that never started", t, func() {
		m := NewMPV()

		Convey("Should succeed and be repeatable", func() {
			So(m.Close(), ShouldBeNil)
			So(m.Close(), ShouldBeNil)
		})

		Convey("Should report not running", func() {
			So(m.IsRunning(), ShouldBeFalse)
		})
	})
}
