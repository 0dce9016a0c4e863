package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/history"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/player"
	"github.com/streamer459/streamingdev-sub000/prefs"
)

// spawnInitLocked starts playback initialization for the given generation
// unless one is already in flight. Callers hold the state mutex.
func (s *Session) spawnInitLocked(gen uint64) {
	if s.initInFlight {
		return
	}
	s.initInFlight = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.initPlayback(gen)
	}()
}

// initPlayback resolves the variant list and starts the player. It runs
// outside the mutex; every step revalidates the generation before touching
// session state, so an identity change mid-flight leaves no side effects.
func (s *Session) initPlayback(gen uint64) {
	defer func() {
		s.mu.Lock()
		s.initInFlight = false
		s.mu.Unlock()
	}()

	s.mu.Lock()
	if gen != s.gen || s.state != StateInitializing || s.stream == nil {
		s.mu.Unlock()
		return
	}
	stream := *s.stream
	channel := s.channel
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(s.ctx, resolveTimeout)
	variants, err := s.resolver.Resolve(rctx, stream.PlaybackURL)
	cancel()
	if err != nil {
		// Stay in Initializing; the next live poll retries resolution.
		log.Warnf("resolve variants for %s: %v", channel, err)
		return
	}

	sourceURL, quality := s.pickSource(channel, stream.PlaybackURL, variants)

	p, err := s.factory()
	if err == nil {
		err = p.Play(sourceURL, playbackTitle(channel, stream.Title), nil)
		if err != nil {
			_ = p.Close()
		}
	}
	if err != nil {
		log.Warnf("start playback for %s: %v", channel, err)

		s.mu.Lock()
		if gen == s.gen && s.state == StateInitializing {
			s.resetUptimeLocked()
			s.transitionLocked(StateOffline)
		}
		s.mu.Unlock()

		s.emit(Event{Kind: EventNotice, Notice: "failed to start the player"})
		s.emit(Event{Kind: EventUpdate})
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.state != StateInitializing {
		// Identity moved on while the player was starting up.
		s.mu.Unlock()
		_ = p.Close()
		return
	}
	s.handle = p
	s.variants = variants
	s.quality = quality
	s.playing = false
	s.transitionLocked(StateWatching)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watchPlayer(gen, p)

	if viper.GetBool(key.HistorySaveOnWatch) {
		if err := history.Save(channel, stream.Title, quality); err != nil {
			log.Warnf("save watch history: %v", err)
		}
	}

	s.emit(Event{Kind: EventUpdate})
}

// pickSource chooses the playback URL: the remembered per-channel quality
// first, then the configured default, then the highest bandwidth variant.
// "auto" maps to the master playlist so the player adapts on its own.
func (s *Session) pickSource(channel, masterURL string, variants []hls.Variant) (string, string) {
	var wanted []string
	if viper.GetBool(key.PlaybackRememberQuality) {
		if saved, ok := prefs.Quality(channel).Get(); ok {
			wanted = append(wanted, saved)
		}
	}
	wanted = append(wanted, viper.GetString(key.PlaybackQuality))

	for _, want := range wanted {
		if want == "" {
			continue
		}
		if strings.EqualFold(want, hls.Auto) {
			return masterURL, hls.Auto
		}
		if v, ok := hls.Pick(variants, want); ok {
			return v.URL, v.Name
		}
		log.Warnf("quality %s not available for %s", want, channel)
	}

	if v, ok := hls.Best(variants); ok {
		return v.URL, v.Name
	}
	return masterURL, hls.Auto
}

func playbackTitle(channel, title string) string {
	if title == "" {
		return channel
	}
	return fmt.Sprintf("%s: %s", channel, title)
}

// watchPlayer consumes one handle's playback events until the process exits
// or the session stops.
func (s *Session) watchPlayer(gen uint64, p player.Player) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-p.Events():
			s.handlePlayerEvent(gen, p, ev)
		case <-p.Wait():
			s.handlePlayerExit(gen, p)
			return
		}
	}
}

func (s *Session) handlePlayerEvent(gen uint64, p player.Player, ev player.Event) {
	var (
		handle  player.Player
		leaveID string
		fatal   bool
	)

	s.mu.Lock()
	if gen != s.gen || s.handle != p {
		s.mu.Unlock()
		return
	}

	switch ev {
	case player.EventPlaying:
		s.playing = true
		s.requestJoinLocked()
	case player.EventPaused:
		// The terminal analog of hiding a browser tab.
		s.playing = false
		s.requestLeaveLocked()
	case player.EventEnded:
		// The feed died under the player while the server may still report
		// the stream as up. Flip liveness locally, dispose the handle once,
		// and let the poller re-initialize playback when the stream returns.
		fatal = true
		handle, leaveID = s.detachLocked()
		s.resetUptimeLocked()
		s.transitionLocked(StateOffline)
	}
	s.mu.Unlock()

	if fatal {
		s.settle(handle, leaveID)
		s.emit(Event{Kind: EventNotice, Notice: "playback ended, waiting for the stream to come back"})
	}
	s.emit(Event{Kind: EventUpdate})
}

// handlePlayerExit runs when the player process died on its own. A handle
// the session already disposed is ignored; anything else means the viewer
// closed the window, which ends the watch session.
func (s *Session) handlePlayerExit(gen uint64, p player.Player) {
	s.mu.Lock()
	if gen != s.gen || s.handle != p {
		s.mu.Unlock()
		return
	}
	handle, leaveID := s.detachLocked()
	s.resetUptimeLocked()
	s.transitionLocked(StateIdle)
	s.mu.Unlock()

	s.settle(handle, leaveID)
	s.emit(Event{Kind: EventEnded})
}

// SwitchQuality moves active playback onto another variant, preserving the
// playback position, and remembers the choice for the channel.
func (s *Session) SwitchQuality(name string) error {
	s.mu.Lock()
	p := s.handle
	gen := s.gen
	channel := s.channel
	current := s.quality
	variants := s.variants
	var masterURL string
	if s.stream != nil {
		masterURL = s.stream.PlaybackURL
	}
	s.mu.Unlock()

	if p == nil {
		return fmt.Errorf("no active playback")
	}
	if strings.EqualFold(name, current) {
		return nil
	}

	var sourceURL string
	if strings.EqualFold(name, hls.Auto) {
		name = hls.Auto
		sourceURL = masterURL
	} else {
		v, ok := hls.Pick(variants, name)
		if !ok {
			return fmt.Errorf("quality %s is not available", name)
		}
		name = v.Name
		sourceURL = v.URL
	}
	if sourceURL == "" {
		return fmt.Errorf("quality %s is not available", name)
	}

	// Capture the position first so the new source can resume where the
	// old one was. On failure play from the live edge instead.
	position, err := p.GetTimePos()
	if err != nil {
		position = -1
	}

	if err := p.SwitchSource(sourceURL); err != nil {
		return fmt.Errorf("switch source: %w", err)
	}

	if position >= 0 {
		// The freshly loaded source rejects commands for a moment.
		for attempt := 0; attempt < 5; attempt++ {
			if err := p.Seek(position); err == nil {
				break
			}
			time.Sleep(200 * time.Millisecond)
		}
	}

	s.mu.Lock()
	if gen == s.gen && s.handle == p {
		s.quality = name
	}
	s.mu.Unlock()

	if viper.GetBool(key.PlaybackRememberQuality) {
		if err := prefs.SetQuality(channel, name); err != nil {
			log.Warnf("remember quality for %s: %v", channel, err)
		}
	}

	s.emit(Event{Kind: EventNotice, Notice: fmt.Sprintf("switched to %s", name)})
	s.emit(Event{Kind: EventUpdate})
	return nil
}

// TogglePause forwards a pause toggle to the active player. Membership
// reacts to the player's own pause notification, not to this call.
func (s *Session) TogglePause() error {
	s.mu.Lock()
	p := s.handle
	s.mu.Unlock()

	if p == nil {
		return fmt.Errorf("no active playback")
	}
	return p.TogglePause()
}
