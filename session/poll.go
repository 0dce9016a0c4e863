package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/player"
	"github.com/streamer459/streamingdev-sub000/util"
)

// pollLoop fetches the broadcast snapshot at a fixed cadence for one
// session generation. It dies when the identity changes, the channel turns
// out not to exist, or the watch session ends.
func (s *Session) pollLoop(gen uint64) {
	defer s.wg.Done()

	s.pollOnce(gen)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.refresh:
		case <-ticker.C:
		}

		s.mu.Lock()
		alive := gen == s.gen && s.state != StateNotFound && s.state != StateIdle
		s.mu.Unlock()
		if !alive {
			return
		}

		s.pollOnce(gen)
	}
}

func (s *Session) pollOnce(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state == StateNotFound || s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	s.pollSeq++
	seq := s.pollSeq
	channel := s.channel
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, pollTimeout)
	stream, err := s.platform.StreamInfo(ctx, channel)
	cancel()

	s.applyPoll(gen, seq, stream, err)
}

// applyPoll folds one poll result into the session state. Everything here
// works under the generation token: results from a previous identity are
// dropped, as are responses older than the newest one already applied.
func (s *Session) applyPoll(gen, seq uint64, stream *api.Stream, err error) {
	var (
		handle  player.Player
		leaveID string
		notice  string
	)

	s.mu.Lock()
	if gen != s.gen || s.state == StateNotFound || s.state == StateIdle {
		s.mu.Unlock()
		return
	}

	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			handle, leaveID = s.detachLocked()
			s.stream = nil
			s.variants = nil
			s.resetUptimeLocked()
			s.transitionLocked(StateNotFound)
			s.mu.Unlock()

			s.settle(handle, leaveID)
			s.emit(Event{Kind: EventUpdate})
			return
		}

		// Transient failure: the previous state stays authoritative and
		// the next tick retries. A single failed poll never flips liveness.
		s.failures++
		log.Warnf("status poll for %s failed (%d in a row): %v", s.channel, s.failures, err)
		s.mu.Unlock()
		return
	}

	if seq <= s.lastSeq {
		// A newer response landed while this one was in flight.
		s.mu.Unlock()
		return
	}
	s.lastSeq = seq
	s.failures = 0
	s.stream = stream

	// Counters pinned by a recent local action keep their value until the
	// grace window elapses.
	now := time.Now()
	if now.After(s.viewersPin) {
		s.viewers = stream.ViewerCount
	}
	if now.After(s.followersPin) {
		s.followers = stream.FollowerCount
	}

	if stream.IsLive {
		if stream.Uptime != "" {
			if base, perr := util.ParseClock(stream.Uptime); perr != nil {
				log.Warnf("unparseable uptime %q for %s: %v", stream.Uptime, s.channel, perr)
			} else {
				s.syncUptimeLocked(base)
			}
		}

		switch s.state {
		case StateLoading, StateOffline:
			s.transitionLocked(StateInitializing)
			s.spawnInitLocked(gen)
		case StateInitializing:
			// A previous variant resolution may have failed; retry.
			if s.handle == nil {
				s.spawnInitLocked(gen)
			}
		case StateWatching:
			// Playback already holds the stream.
		}
	} else {
		if s.state.live() {
			handle, leaveID = s.detachLocked()
			notice = fmt.Sprintf("%s went offline", s.channel)
		}
		s.resetUptimeLocked()
		s.transitionLocked(StateOffline)
	}
	s.mu.Unlock()

	s.settle(handle, leaveID)
	if notice != "" {
		s.emit(Event{Kind: EventNotice, Notice: notice})
	}
	s.emit(Event{Kind: EventUpdate})
}

// syncUptimeLocked rebases the uptime clock on a server-reported value.
// Small regressions are jitter between our ticks and the server's clock
// and get clamped so the display stays monotone; a regression larger than
// the poll interval means the broadcast restarted and is accepted.
func (s *Session) syncUptimeLocked(base int) {
	current := s.uptimeBase + s.uptimeOffset
	if base < current && current-base <= int(s.pollInterval/time.Second)+1 {
		base = current
	}
	s.uptimeBase = base
	s.uptimeOffset = 0
}

// uptimeLoop advances the uptime clock between polls.
func (s *Session) uptimeLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tickUptime()
		}
	}
}

func (s *Session) tickUptime() {
	s.mu.Lock()
	if !s.state.live() {
		s.mu.Unlock()
		return
	}
	s.uptimeOffset++
	s.mu.Unlock()

	s.emit(Event{Kind: EventUpdate})
}
