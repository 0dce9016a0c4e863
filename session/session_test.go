package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/player"
	"github.com/streamer459/streamingdev-sub000/prefs"
)

func init() {
	filesystem.SetMemMapFs()

	viper.Set(key.PollInterval, 30*time.Millisecond)
	viper.Set(key.PollCounterGrace, 10*time.Second)
	viper.Set(key.MembershipEnable, true)
	viper.Set(key.MembershipDebounce, 15*time.Millisecond)
	viper.Set(key.PlaybackQuality, "auto")
	viper.Set(key.PlaybackRememberQuality, true)
	viper.Set(key.HistorySaveOnWatch, false)
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func masterURL(channel string) string {
	return fmt.Sprintf("https://media.test/hls/%s/index.m3u8", channel)
}

func liveStream(channel string) api.Stream {
	return api.Stream{
		ID:            "st-" + channel,
		Title:         channel + " is live",
		IsLive:        true,
		Uptime:        "5:00",
		ViewerCount:   7,
		FollowerCount: 100,
		PlaybackURL:   masterURL(channel),
		Bio:           "about " + channel,
	}
}

type fakeAPI struct {
	mu      sync.Mutex
	streams map[string]api.Stream
	missing map[string]bool
	infoErr error
	calls   []string
}

func newFakeAPI(channels ...string) *fakeAPI {
	f := &fakeAPI{
		streams: make(map[string]api.Stream),
		missing: make(map[string]bool),
	}
	for _, ch := range channels {
		f.streams[ch] = liveStream(ch)
	}
	return f
}

func (f *fakeAPI) setStream(channel string, stream api.Stream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streams[channel] = stream
}

func (f *fakeAPI) setLive(channel string, live bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stream := f.streams[channel]
	stream.IsLive = live
	if !live {
		stream.Uptime = ""
		stream.ViewerCount = 0
	}
	f.streams[channel] = stream
}

func (f *fakeAPI) setUptime(channel, uptime string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stream := f.streams[channel]
	stream.Uptime = uptime
	f.streams[channel] = stream
}

func (f *fakeAPI) setMissing(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[channel] = true
}

func (f *fakeAPI) setInfoErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoErr = err
}

func (f *fakeAPI) StreamInfo(_ context.Context, channel string) (*api.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "info:"+channel)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.missing[channel] {
		return nil, api.ErrNotFound
	}
	stream, ok := f.streams[channel]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &stream, nil
}

func (f *fakeAPI) JoinStream(_ context.Context, streamID, _ string) (*api.JoinResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "join:"+streamID)
	return &api.JoinResult{Success: true, ViewerCount: 8}, nil
}

func (f *fakeAPI) LeaveStream(_ context.Context, streamID, _ string) (*api.JoinResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "leave:"+streamID)
	return &api.JoinResult{Success: true, ViewerCount: 7}, nil
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Count(f.calls, call)
}

func (f *fakeAPI) index(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.IndexOf(f.calls, call)
}

type fakeResolver struct {
	mu       sync.Mutex
	variants []hls.Variant
	err      error
	resolved int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		variants: []hls.Variant{
			{Name: "1080p", URL: "https://media.test/hls/x/1080p/index.m3u8", Bandwidth: 6000000},
			{Name: "720p", URL: "https://media.test/hls/x/720p/index.m3u8", Bandwidth: 3000000},
		},
	}
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) ([]hls.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved++
	if f.err != nil {
		return nil, f.err
	}
	return append([]hls.Variant(nil), f.variants...), nil
}

func (f *fakeResolver) resolvedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

type fakePlayer struct {
	mu      sync.Mutex
	events  chan player.Event
	exited  chan struct{}
	dead    bool
	closes  int
	playURL string
	sources []string
	seeks   []float64
	ops     []string
	pos     float64
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		events: make(chan player.Event, 16),
		exited: make(chan struct{}),
		pos:    42.5,
	}
}

func (f *fakePlayer) Play(url, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playURL = url
	f.ops = append(f.ops, "play")
	return nil
}

func (f *fakePlayer) SwitchSource(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, url)
	f.ops = append(f.ops, "switch")
	return nil
}

func (f *fakePlayer) TogglePause() error { return nil }

func (f *fakePlayer) GetTimePos() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "timepos")
	return f.pos, nil
}

func (f *fakePlayer) GetPausedStatus() (bool, error)   { return false, nil }
func (f *fakePlayer) HasActivePlayback() (bool, error) { return true, nil }

func (f *fakePlayer) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.ops = append(f.ops, "seek")
	return nil
}

func (f *fakePlayer) IsRunning() bool {
	select {
	case <-f.exited:
		return false
	default:
		return true
	}
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if !f.dead {
		f.dead = true
		close(f.exited)
	}
	return nil
}

func (f *fakePlayer) Socket() string              { return "fake" }
func (f *fakePlayer) Events() <-chan player.Event { return f.events }
func (f *fakePlayer) Wait() <-chan struct{}       { return f.exited }
func (f *fakePlayer) emit(e player.Event)         { f.events <- e }

// die simulates the process exiting on its own (viewer closed the window).
func (f *fakePlayer) die() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dead {
		f.dead = true
		close(f.exited)
	}
}

func (f *fakePlayer) closeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakePlayer) playedURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playURL
}

func (f *fakePlayer) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakePlayer) switchedTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sources...)
}

func (f *fakePlayer) seekLog() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}

type fakeFactory struct {
	mu      sync.Mutex
	players []*fakePlayer
	err     error
}

func (f *fakeFactory) new() (player.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p := newFakePlayer()
	f.players = append(f.players, p)
	return p, nil
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.players)
}

func (f *fakeFactory) disposed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.CountBy(f.players, func(p *fakePlayer) bool { return !p.IsRunning() })
}

func (f *fakeFactory) last() *fakePlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.players) == 0 {
		return nil
	}
	return f.players[len(f.players)-1]
}

func harness(channels ...string) (*fakeAPI, *fakeResolver, *fakeFactory, *Session) {
	fa := newFakeAPI(channels...)
	fr := newFakeResolver()
	fac := &fakeFactory{}
	s := newSession(fa, fr, fac.new, time.Hour)
	return fa, fr, fac, s
}

// startWatching brings a harness session to the watching state.
func startWatching(s *Session, channel string) bool {
	if err := s.Watch(channel); err != nil {
		return false
	}
	return waitFor(func() bool { return s.Snapshot().State == StateWatching })
}

func TestStateMachine(t *testing.T) {
	Convey("Watching a channel", t, func() {
		Convey("A live channel ends up in the watching state", func() {
			_, fr, fac, s := harness("alpha")
			Reset(s.Stop)

			So(startWatching(s, "alpha"), ShouldBeTrue)

			sn := s.Snapshot()
			So(sn.Channel, ShouldEqual, "alpha")
			So(sn.Live, ShouldBeTrue)
			So(sn.Title, ShouldEqual, "alpha is live")
			So(sn.Quality, ShouldEqual, hls.Auto)
			So(fr.resolvedCount(), ShouldBeGreaterThanOrEqualTo, 1)

			Convey("Auto quality hands the player the master playlist", func() {
				So(fac.last().playedURL(), ShouldEqual, masterURL("alpha"))
			})
		})

		Convey("Channel names are normalized", func() {
			_, _, _, s := harness("alpha")
			Reset(s.Stop)

			So(s.Watch("  ALPHA "), ShouldBeNil)
			So(s.Snapshot().Channel, ShouldEqual, "alpha")
			So(s.Watch("   "), ShouldNotBeNil)
		})

		Convey("An offline channel parks in the offline state and keeps polling", func() {
			fa, _, fac, s := harness("sleepy")
			fa.setLive("sleepy", false)
			Reset(s.Stop)

			So(s.Watch("sleepy"), ShouldBeNil)
			So(waitFor(func() bool { return s.Snapshot().State == StateOffline }), ShouldBeTrue)

			sn := s.Snapshot()
			So(sn.Live, ShouldBeFalse)
			So(sn.UptimeSeconds, ShouldEqual, 0)
			So(fac.created(), ShouldEqual, 0)

			Convey("And initializes playback when the stream comes up", func() {
				fa.setLive("sleepy", true)
				fa.setUptime("sleepy", "0:10")

				So(waitFor(func() bool { return s.Snapshot().State == StateWatching }), ShouldBeTrue)
				So(fac.created(), ShouldEqual, 1)
			})
		})

		Convey("An unknown channel is terminal until the identity changes", func() {
			fa, _, _, s := harness("alpha")
			Reset(s.Stop)

			So(s.Watch("ghost"), ShouldBeNil)
			So(waitFor(func() bool { return s.Snapshot().State == StateNotFound }), ShouldBeTrue)

			Convey("Polling stops", func() {
				before := fa.count("info:ghost")
				time.Sleep(150 * time.Millisecond)
				So(fa.count("info:ghost"), ShouldEqual, before)
			})

			Convey("Watching another channel recovers", func() {
				So(s.Watch("alpha"), ShouldBeNil)
				So(waitFor(func() bool { return s.Snapshot().State == StateWatching }), ShouldBeTrue)
			})
		})

		Convey("A transient poll failure never flips liveness", func() {
			fa, _, _, s := harness("alpha")
			Reset(s.Stop)

			So(startWatching(s, "alpha"), ShouldBeTrue)

			fa.setInfoErr(errors.New("gateway timeout"))
			time.Sleep(120 * time.Millisecond)

			sn := s.Snapshot()
			So(sn.State, ShouldEqual, StateWatching)
			So(sn.Live, ShouldBeTrue)
			So(sn.Title, ShouldEqual, "alpha is live")

			Convey("And recovery picks polling back up", func() {
				fa.setInfoErr(nil)
				fa.setUptime("alpha", "9:00")
				So(waitFor(func() bool { return s.Snapshot().UptimeSeconds >= 540 }), ShouldBeTrue)
			})
		})
	})
}

func TestPollOrdering(t *testing.T) {
	Convey("Applying poll results", t, func() {
		_, _, _, s := harness()
		Reset(s.Stop)

		// Prime the session by hand so results can be injected precisely.
		s.mu.Lock()
		s.gen = 1
		s.channel = "manual"
		s.state = StateLoading
		s.mu.Unlock()

		second := &api.Stream{ID: "st-m", Title: "second", FollowerCount: 2}
		first := &api.Stream{ID: "st-m", Title: "first", FollowerCount: 1}

		Convey("A stale response never overwrites a newer one", func() {
			s.applyPoll(1, 2, second, nil)
			s.applyPoll(1, 1, first, nil)

			sn := s.Snapshot()
			So(sn.Title, ShouldEqual, "second")
			So(sn.Followers, ShouldEqual, 2)
		})

		Convey("A response from a dead generation is discarded", func() {
			s.applyPoll(0, 7, second, nil)

			So(s.Snapshot().State, ShouldEqual, StateLoading)
			So(s.Snapshot().Title, ShouldBeEmpty)
		})

		Convey("A failed poll does not consume the applied sequence", func() {
			s.applyPoll(1, 1, first, nil)
			s.applyPoll(1, 2, nil, errors.New("boom"))

			So(s.Snapshot().Title, ShouldEqual, "first")

			s.applyPoll(1, 3, second, nil)
			So(s.Snapshot().Title, ShouldEqual, "second")
		})

		Convey("Nothing lands after the channel turned out not to exist", func() {
			s.applyPoll(1, 1, nil, api.ErrNotFound)
			So(s.Snapshot().State, ShouldEqual, StateNotFound)

			s.applyPoll(1, 2, second, nil)
			So(s.Snapshot().State, ShouldEqual, StateNotFound)
			So(s.Snapshot().Title, ShouldBeEmpty)
		})
	})
}

func TestIdentityChanges(t *testing.T) {
	Convey("Rapidly switching channels", t, func() {
		_, _, fac, s := harness("alpha", "beta", "gamma")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)

		So(s.Watch("beta"), ShouldBeNil)
		So(s.Watch("gamma"), ShouldBeNil)

		So(waitFor(func() bool {
			sn := s.Snapshot()
			return sn.Channel == "gamma" && sn.State == StateWatching
		}), ShouldBeTrue)

		// Give stragglers from the dead generations a moment to settle.
		time.Sleep(100 * time.Millisecond)

		Convey("At most one playback handle stays alive", func() {
			So(fac.created(), ShouldBeGreaterThanOrEqualTo, 2)
			So(fac.disposed(), ShouldEqual, fac.created()-1)
			So(fac.last().playedURL(), ShouldEqual, masterURL("gamma"))
			So(fac.last().IsRunning(), ShouldBeTrue)
		})
	})
}

func TestUptimeClock(t *testing.T) {
	Convey("The uptime clock", t, func() {
		fa, _, fac, s := harness("alpha")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		So(s.Snapshot().Uptime, ShouldEqual, "5:00")

		Convey("Ticks advance the display by one second", func() {
			s.tickUptime()
			So(s.Snapshot().Uptime, ShouldEqual, "5:01")

			Convey("And subsequent polls reporting the old value cannot move it backward", func() {
				time.Sleep(100 * time.Millisecond)
				So(s.Snapshot().Uptime, ShouldEqual, "5:01")
			})
		})

		Convey("A fresher server clock rebases the display", func() {
			fa.setUptime("alpha", "5:30")
			So(waitFor(func() bool { return s.Snapshot().UptimeSeconds == 330 }), ShouldBeTrue)
		})

		Convey("A regression larger than the poll interval is a broadcast restart", func() {
			fa.setUptime("alpha", "0:30")
			So(waitFor(func() bool { return s.Snapshot().UptimeSeconds == 30 }), ShouldBeTrue)
		})

		Convey("Going offline zeroes the clock exactly when liveness flips", func() {
			s.tickUptime()
			So(s.Snapshot().UptimeSeconds, ShouldEqual, 301)

			fa.setLive("alpha", false)
			So(waitFor(func() bool { return s.Snapshot().State == StateOffline }), ShouldBeTrue)

			sn := s.Snapshot()
			So(sn.Live, ShouldBeFalse)
			So(sn.UptimeSeconds, ShouldEqual, 0)

			Convey("Offline ticks contribute nothing", func() {
				s.tickUptime()
				So(s.Snapshot().UptimeSeconds, ShouldEqual, 0)
			})

			Convey("A returning stream starts a fresh clock and playback", func() {
				fa.setLive("alpha", true)
				fa.setUptime("alpha", "6:00")

				So(waitFor(func() bool { return s.Snapshot().State == StateWatching }), ShouldBeTrue)
				So(s.Snapshot().UptimeSeconds, ShouldEqual, 360)
				So(fac.created(), ShouldEqual, 2)
			})
		})
	})
}

func TestCounterGrace(t *testing.T) {
	Convey("Locally adjusted counters", t, func() {
		viper.Set(key.PollCounterGrace, 80*time.Millisecond)
		Reset(func() { viper.Set(key.PollCounterGrace, 10*time.Second) })

		_, _, _, s := harness("alpha")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		So(waitFor(func() bool { return s.Snapshot().Followers == 100 }), ShouldBeTrue)

		Convey("A local adjust wins over polls during the grace window", func() {
			s.AdjustFollowers(1)
			So(s.Snapshot().Followers, ShouldEqual, 101)

			time.Sleep(40 * time.Millisecond)
			So(s.Snapshot().Followers, ShouldEqual, 101)

			Convey("And the next poll after the window restores the server value", func() {
				So(waitFor(func() bool { return s.Snapshot().Followers == 100 }), ShouldBeTrue)
			})
		})

		Convey("The count never drops below zero", func() {
			s.AdjustFollowers(-500)
			So(s.Snapshot().Followers, ShouldEqual, 0)
		})
	})
}

func TestMembership(t *testing.T) {
	Convey("Viewer membership", t, func() {
		fa, _, fac, s := harness("alpha", "beta")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		Convey("Join happens only on an observed playback start", func() {
			So(fa.count("join:st-alpha"), ShouldEqual, 0)

			fp.emit(player.EventPlaying)
			So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)
			So(s.Snapshot().Joined, ShouldBeTrue)

			Convey("The acknowledged viewer count pins the display", func() {
				So(waitFor(func() bool { return s.Snapshot().Viewers == 8 }), ShouldBeTrue)
				time.Sleep(100 * time.Millisecond)
				So(s.Snapshot().Viewers, ShouldEqual, 8)
			})

			Convey("Duplicate playback starts are idempotent", func() {
				fp.emit(player.EventPlaying)
				time.Sleep(80 * time.Millisecond)
				So(fa.count("join:st-alpha"), ShouldEqual, 1)
			})

			Convey("A rapid pause and unpause produces no traffic", func() {
				fp.emit(player.EventPaused)
				fp.emit(player.EventPlaying)
				time.Sleep(80 * time.Millisecond)

				So(fa.count("leave:st-alpha"), ShouldEqual, 0)
				So(fa.count("join:st-alpha"), ShouldEqual, 1)
			})

			Convey("A real pause leaves after the debounce window", func() {
				fp.emit(player.EventPaused)
				So(waitFor(func() bool { return fa.count("leave:st-alpha") == 1 }), ShouldBeTrue)
				So(s.Snapshot().Joined, ShouldBeFalse)

				Convey("Duplicate leaves are idempotent", func() {
					fp.emit(player.EventPaused)
					time.Sleep(80 * time.Millisecond)
					So(fa.count("leave:st-alpha"), ShouldEqual, 1)
				})

				Convey("Unpausing rejoins", func() {
					fp.emit(player.EventPlaying)
					So(waitFor(func() bool { return fa.count("join:st-alpha") == 2 }), ShouldBeTrue)
				})
			})
		})

		Convey("No join is sent while playback is not actually running", func() {
			s.mu.Lock()
			s.desiredJoin = true
			s.armFlushLocked()
			s.mu.Unlock()

			time.Sleep(80 * time.Millisecond)
			So(fa.count("join:st-alpha"), ShouldEqual, 0)
		})

		Convey("Navigating away settles the old channel before the new one joins", func() {
			fp.emit(player.EventPlaying)
			So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

			So(s.Watch("beta"), ShouldBeNil)
			So(waitFor(func() bool {
				sn := s.Snapshot()
				return sn.Channel == "beta" && sn.State == StateWatching
			}), ShouldBeTrue)

			fac.last().emit(player.EventPlaying)
			So(waitFor(func() bool { return fa.count("join:st-beta") == 1 }), ShouldBeTrue)

			So(fa.count("leave:st-alpha"), ShouldEqual, 1)
			So(fa.index("leave:st-alpha"), ShouldBeLessThan, fa.index("join:st-beta"))
		})
	})
}

func TestQualitySwitch(t *testing.T) {
	Convey("Switching playback quality", t, func() {
		_, fr, fac, s := harness("delta")
		Reset(func() {
			s.Stop()
			// The switch persists a preference; later runs of this block
			// must start from a clean slate.
			_ = prefs.ForgetQuality("delta")
		})

		So(startWatching(s, "delta"), ShouldBeTrue)
		fp := fac.last()

		Convey("The switch preserves the captured playback position", func() {
			So(s.SwitchQuality("720p"), ShouldBeNil)

			ops := fp.opLog()
			So(ops, ShouldResemble, []string{"play", "timepos", "switch", "seek"})
			So(fp.switchedTo(), ShouldResemble, []string{fr.variants[1].URL})
			So(fp.seekLog(), ShouldResemble, []float64{42.5})

			sn := s.Snapshot()
			So(sn.Quality, ShouldEqual, "720p")

			Convey("The choice is remembered for the channel", func() {
				So(prefs.Quality("delta").MustGet(), ShouldEqual, "720p")
			})

			Convey("Switching to the active quality is a no-op", func() {
				So(s.SwitchQuality("720p"), ShouldBeNil)
				So(fp.opLog(), ShouldHaveLength, 4)
			})

			Convey("Auto maps back to the master playlist", func() {
				So(s.SwitchQuality(hls.Auto), ShouldBeNil)
				switched := fp.switchedTo()
				So(switched[len(switched)-1], ShouldEqual, masterURL("delta"))
				So(s.Snapshot().Quality, ShouldEqual, hls.Auto)
			})
		})

		Convey("An unknown quality is rejected without touching playback", func() {
			So(s.SwitchQuality("144p"), ShouldNotBeNil)
			So(fp.opLog(), ShouldResemble, []string{"play"})
		})
	})

	Convey("A remembered preference drives the next watch", t, func() {
		So(prefs.SetQuality("echo", "720p"), ShouldBeNil)

		_, fr, fac, s := harness("echo")
		Reset(s.Stop)

		So(startWatching(s, "echo"), ShouldBeTrue)
		So(fac.last().playedURL(), ShouldEqual, fr.variants[1].URL)
		So(s.Snapshot().Quality, ShouldEqual, "720p")
	})

	Convey("Without playback there is nothing to switch", t, func() {
		_, _, _, s := harness("delta")
		Reset(s.Stop)

		So(s.SwitchQuality("720p"), ShouldNotBeNil)
	})
}

func TestPlaybackFailure(t *testing.T) {
	Convey("Playback dying under a live stream", t, func() {
		fa, _, fac, s := harness("alpha")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		fp.emit(player.EventPlaying)
		So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

		// Freeze polling so the intermediate state is observable.
		fa.setInfoErr(errors.New("network down"))

		fp.emit(player.EventEnded)

		Convey("Liveness flips false locally with exactly one dispose", func() {
			So(waitFor(func() bool { return s.Snapshot().State == StateOffline }), ShouldBeTrue)

			sn := s.Snapshot()
			So(sn.Live, ShouldBeFalse)
			So(sn.UptimeSeconds, ShouldEqual, 0)

			So(waitFor(func() bool { return fp.closeCalls() == 1 }), ShouldBeTrue)
			So(waitFor(func() bool { return fa.count("leave:st-alpha") == 1 }), ShouldBeTrue)

			Convey("Extra end notifications are safe", func() {
				fp.emit(player.EventEnded)
				time.Sleep(60 * time.Millisecond)
				So(fp.closeCalls(), ShouldEqual, 1)
				So(fa.count("leave:st-alpha"), ShouldEqual, 1)
			})

			Convey("The poller keeps running and re-initializes playback", func() {
				fa.setInfoErr(nil)
				So(waitFor(func() bool { return s.Snapshot().State == StateWatching }), ShouldBeTrue)
				So(fac.created(), ShouldEqual, 2)
			})
		})
	})

	Convey("A player that cannot start drops the session to offline", t, func() {
		_, _, fac, s := harness("alpha")
		fac.err = errors.New("mpv not installed")
		Reset(s.Stop)

		So(s.Watch("alpha"), ShouldBeNil)
		So(waitFor(func() bool {
			sn := s.Snapshot()
			return sn.State == StateOffline && !sn.Live
		}), ShouldBeTrue)
		So(fac.created(), ShouldEqual, 0)
	})
}

func TestCleanPlayerExit(t *testing.T) {
	Convey("The viewer closing the player window", t, func() {
		fa, _, fac, s := harness("alpha")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		fp.emit(player.EventPlaying)
		So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

		fp.die()

		Convey("Ends the watch session", func() {
			So(waitFor(func() bool { return s.Snapshot().State == StateIdle }), ShouldBeTrue)
			So(waitFor(func() bool { return fa.count("leave:st-alpha") == 1 }), ShouldBeTrue)

			Convey("With an ended notification for the shells", func() {
				ended := false
				So(waitFor(func() bool {
					for {
						select {
						case ev := <-s.Events():
							if ev.Kind == EventEnded {
								ended = true
							}
						default:
							return ended
						}
					}
				}), ShouldBeTrue)
			})

			Convey("Polling winds down", func() {
				time.Sleep(60 * time.Millisecond)
				before := fa.count("info:alpha")
				time.Sleep(150 * time.Millisecond)
				So(fa.count("info:alpha"), ShouldEqual, before)
			})

			Convey("A fresh watch starts over", func() {
				So(startWatching(s, "alpha"), ShouldBeTrue)
				So(fac.created(), ShouldEqual, 2)
			})
		})
	})
}

func TestChannelRemoved(t *testing.T) {
	Convey("A watched channel disappearing", t, func() {
		fa, _, fac, s := harness("alpha")
		Reset(s.Stop)

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		fp.emit(player.EventPlaying)
		So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

		fa.setMissing("alpha")

		Convey("Tears everything down terminally", func() {
			So(waitFor(func() bool { return s.Snapshot().State == StateNotFound }), ShouldBeTrue)

			So(waitFor(func() bool { return fp.closeCalls() == 1 }), ShouldBeTrue)
			So(waitFor(func() bool { return fa.count("leave:st-alpha") == 1 }), ShouldBeTrue)

			sn := s.Snapshot()
			So(sn.Live, ShouldBeFalse)
			So(sn.UptimeSeconds, ShouldEqual, 0)
			So(sn.Joined, ShouldBeFalse)

			So(s.SwitchQuality("720p"), ShouldNotBeNil)

			Convey("And polling stops", func() {
				before := fa.count("info:alpha")
				time.Sleep(150 * time.Millisecond)
				So(fa.count("info:alpha"), ShouldEqual, before)
			})
		})
	})
}

func TestLeave(t *testing.T) {
	Convey("Leaving the watched channel", t, func() {
		fa, _, fac, s := harness("alpha")
		defer s.Stop()

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		fp.emit(player.EventPlaying)
		So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

		s.Leave()

		Convey("Settles membership and playback, back to idle", func() {
			So(fa.count("leave:st-alpha"), ShouldEqual, 1)
			So(fp.closeCalls(), ShouldEqual, 1)

			sn := s.Snapshot()
			So(sn.State, ShouldEqual, StateIdle)
			So(sn.Channel, ShouldBeEmpty)
			So(sn.UptimeSeconds, ShouldEqual, 0)
		})

		Convey("Stops the old channel's polling", func() {
			polled := fa.count("info:alpha")
			time.Sleep(150 * time.Millisecond)
			So(fa.count("info:alpha"), ShouldEqual, polled)
		})

		Convey("A fresh watch starts over", func() {
			So(startWatching(s, "alpha"), ShouldBeTrue)
			So(fac.created(), ShouldEqual, 2)
		})
	})
}

func TestStop(t *testing.T) {
	Convey("Stopping the session", t, func() {
		fa, _, fac, s := harness("alpha")

		So(startWatching(s, "alpha"), ShouldBeTrue)
		fp := fac.last()

		fp.emit(player.EventPlaying)
		So(waitFor(func() bool { return fa.count("join:st-alpha") == 1 }), ShouldBeTrue)

		s.Stop()

		Convey("Flushes the leave and disposes playback", func() {
			So(fa.count("leave:st-alpha"), ShouldEqual, 1)
			So(fp.closeCalls(), ShouldEqual, 1)

			select {
			case <-s.Done():
			default:
				So("done channel should be closed", ShouldBeEmpty)
			}
		})

		Convey("Is idempotent", func() {
			s.Stop()
			So(fa.count("leave:st-alpha"), ShouldEqual, 1)
		})

		Convey("Refuses further watches", func() {
			So(s.Watch("alpha"), ShouldNotBeNil)
		})
	})
}
