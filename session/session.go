// Package session coordinates everything a live watch session consists of:
// the status poller, the playback handle, viewer membership accounting and
// the uptime clock. Shells (tui, mini, inline) drive it through Watch and
// render whatever Snapshot returns.
//
// Concurrency model: one mutex guards all state, async work carries the
// generation token it was started under, and a continuation whose token no
// longer matches the current generation is discarded without side effects.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/player"
	"github.com/streamer459/streamingdev-sub000/prefs"
	"github.com/streamer459/streamingdev-sub000/util"
)

const (
	eventBuffer       = 64
	membershipTimeout = 5 * time.Second
	resolveTimeout    = 10 * time.Second
	pollTimeout       = 10 * time.Second
)

// API is the slice of the platform client the session needs.
type API interface {
	StreamInfo(ctx context.Context, channel string) (*api.Stream, error)
	JoinStream(ctx context.Context, streamID, viewerID string) (*api.JoinResult, error)
	LeaveStream(ctx context.Context, streamID, viewerID string) (*api.JoinResult, error)
}

// VariantResolver turns a master playlist URL into its quality variants.
type VariantResolver interface {
	Resolve(ctx context.Context, masterURL string) ([]hls.Variant, error)
}

// PlayerFactory produces a fresh playback handle per live session.
type PlayerFactory func() (player.Player, error)

// DefaultFactory launches the playback backend selected by configuration.
func DefaultFactory() (player.Player, error) {
	return player.FromConfig(), nil
}

// Session is the view-state coordinator for one watched channel at a time.
type Session struct {
	platform API
	resolver VariantResolver
	factory  PlayerFactory

	pollInterval time.Duration
	counterGrace time.Duration
	debounce     time.Duration
	tickEvery    time.Duration
	track        bool
	viewerID     string

	mu      sync.Mutex
	state   State
	channel string

	// gen is bumped on every identity change; async completions compare
	// their captured value against it before touching anything.
	gen uint64

	// pollSeq numbers issued polls, lastSeq is the newest applied one.
	// Responses arriving out of order are dropped by this pair.
	pollSeq  uint64
	lastSeq  uint64
	failures int

	stream   *api.Stream
	variants []hls.Variant
	quality  string

	viewers      int
	followers    int
	viewersPin   time.Time
	followersPin time.Time

	uptimeBase   int
	uptimeOffset int

	handle       player.Player
	initInFlight bool
	playing      bool

	joined      bool
	desiredJoin bool
	memberTimer *time.Timer

	// flushMu serializes membership network calls so a teardown leave
	// cannot overtake a debounced join already past its checks.
	flushMu sync.Mutex

	events  chan Event
	refresh chan struct{}

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates an idle session. Polling starts with the first Watch call.
func New(platform API, resolver VariantResolver, factory PlayerFactory) *Session {
	return newSession(platform, resolver, factory, time.Second)
}

func newSession(platform API, resolver VariantResolver, factory PlayerFactory, tickEvery time.Duration) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		platform:     platform,
		resolver:     resolver,
		factory:      factory,
		pollInterval: viper.GetDuration(key.PollInterval),
		counterGrace: viper.GetDuration(key.PollCounterGrace),
		debounce:     viper.GetDuration(key.MembershipDebounce),
		tickEvery:    tickEvery,
		track:        viper.GetBool(key.MembershipEnable),
		state:        StateIdle,
		events:       make(chan Event, eventBuffer),
		refresh:      make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}

	if s.pollInterval <= 0 {
		s.pollInterval = 10 * time.Second
	}
	if s.counterGrace < 0 {
		s.counterGrace = 0
	}
	if s.debounce <= 0 {
		s.debounce = 500 * time.Millisecond
	}

	id, err := prefs.ViewerID()
	if err != nil {
		log.Warnf("viewer identifier unavailable, using an ephemeral one: %v", err)
		id = uuid.NewString()
	}
	s.viewerID = id

	s.wg.Add(1)
	go s.uptimeLoop()

	return s
}

// Watch switches the session to a new channel. Playback and membership of
// the previous channel are settled synchronously before the new channel's
// poller starts, so a leave always lands before the next join.
func (s *Session) Watch(channel string) error {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		return fmt.Errorf("empty channel name")
	}
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("session is stopped")
	default:
	}

	s.mu.Lock()
	handle, leaveID := s.resetIdentityLocked(channel)
	gen := s.gen
	s.transitionLocked(StateLoading)
	s.mu.Unlock()

	s.settle(handle, leaveID)

	s.wg.Add(1)
	go s.pollLoop(gen)

	s.emit(Event{Kind: EventUpdate})
	return nil
}

// Leave stops watching the current channel without tearing the session
// down. Playback and membership are settled synchronously; the session
// goes back to Idle and can Watch again.
func (s *Session) Leave() {
	s.mu.Lock()
	handle, leaveID := s.resetIdentityLocked("")
	s.transitionLocked(StateIdle)
	s.mu.Unlock()

	s.settle(handle, leaveID)
	s.emit(Event{Kind: EventUpdate})
}

// resetIdentityLocked moves the session to a new channel identity. The
// generation bump orphans every continuation of the old identity, polls
// included.
func (s *Session) resetIdentityLocked(channel string) (handle player.Player, leaveID string) {
	handle, leaveID = s.detachLocked()
	s.gen++
	s.channel = channel
	s.stream = nil
	s.variants = nil
	s.quality = ""
	s.viewers = 0
	s.followers = 0
	s.viewersPin = time.Time{}
	s.followersPin = time.Time{}
	s.failures = 0
	s.resetUptimeLocked()
	return handle, leaveID
}

// Stop tears the session down: playback disposed, a pending membership
// leave flushed, every background loop joined. Safe to call repeatedly.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		handle, leaveID := s.resetIdentityLocked("")
		s.transitionLocked(StateIdle)
		s.mu.Unlock()

		s.settle(handle, leaveID)
		s.cancel()
		s.wg.Wait()
	})
}

// Events returns the outbound notification channel. It is never closed;
// consumers should also select on Done.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed once Stop ran.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Refresh schedules an immediate status poll, used when a push notification
// hints that the channel's state changed.
func (s *Session) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// AdjustFollowers applies a local follower-count delta (follow/unfollow)
// and pins the counter for the grace window so the next polls cannot
// immediately overwrite it with a stale server value.
func (s *Session) AdjustFollowers(delta int) {
	s.mu.Lock()
	s.followers += delta
	if s.followers < 0 {
		s.followers = 0
	}
	s.followersPin = time.Now().Add(s.counterGrace)
	s.mu.Unlock()

	s.emit(Event{Kind: EventUpdate})
}

// Snapshot returns a consistent copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := Snapshot{
		Channel:   s.channel,
		State:     s.state,
		Live:      s.state.live(),
		Viewers:   s.viewers,
		Followers: s.followers,
		Quality:   s.quality,
		Joined:    s.joined,
	}
	if s.stream != nil {
		sn.Title = s.stream.Title
		sn.Bio = s.stream.Bio
	}
	if sn.Live {
		sn.UptimeSeconds = s.uptimeBase + s.uptimeOffset
	}
	sn.Uptime = util.FormatClock(sn.UptimeSeconds)
	if len(s.variants) > 0 {
		sn.Variants = append([]hls.Variant(nil), s.variants...)
	}
	return sn
}

// detachLocked rips playback and membership state out of the session and
// returns what the caller must settle once the mutex is released.
func (s *Session) detachLocked() (handle player.Player, leaveID string) {
	handle = s.handle
	s.handle = nil
	s.playing = false

	if s.memberTimer != nil {
		s.memberTimer.Stop()
		s.memberTimer = nil
	}
	s.desiredJoin = false
	if s.joined && s.stream != nil && s.stream.ID != "" {
		leaveID = s.stream.ID
	}
	s.joined = false

	return handle, leaveID
}

// settle disposes a detached handle and flushes a pending leave. Must be
// called without holding the state mutex.
func (s *Session) settle(handle player.Player, leaveID string) {
	if handle != nil {
		if err := handle.Close(); err != nil {
			log.Warnf("close player: %v", err)
		}
	}
	if leaveID == "" {
		return
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), membershipTimeout)
	defer cancel()

	if _, err := s.platform.LeaveStream(ctx, leaveID, s.viewerID); err != nil {
		log.Warnf("leave stream %s: %v", leaveID, err)
	}
}

func (s *Session) transitionLocked(next State) {
	if s.state == next {
		return
	}
	log.Debugf("session %s: %s -> %s", s.channel, s.state, next)
	s.state = next
}

func (s *Session) resetUptimeLocked() {
	s.uptimeBase = 0
	s.uptimeOffset = 0
}

// emit delivers an event without ever blocking; updates are coalesced
// because consumers pull fresh state via Snapshot anyway.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
