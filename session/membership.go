package session

import (
	"context"
	"time"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/log"
)

// Viewer membership mirrors what the web player does with tab visibility:
// a viewer counts while the stream is actually playing in front of them.
// Transitions are debounced so a rapid pause/unpause cycle cancels out
// without network traffic, and every call is best effort: a failed join or
// leave is logged and never disturbs playback.

func (s *Session) requestJoinLocked() {
	if !s.track || s.stream == nil || s.stream.ID == "" {
		return
	}
	s.desiredJoin = true
	s.armFlushLocked()
}

func (s *Session) requestLeaveLocked() {
	if !s.track {
		return
	}
	s.desiredJoin = false
	if !s.joined && s.memberTimer == nil {
		return
	}
	s.armFlushLocked()
}

func (s *Session) armFlushLocked() {
	if s.memberTimer == nil {
		s.memberTimer = time.AfterFunc(s.debounce, s.flushMembership)
		return
	}
	s.memberTimer.Reset(s.debounce)
}

// flushMembership reconciles the joined flag with the desired state once
// the debounce window passed. If they already agree (pause followed by a
// quick unpause, duplicate playback-start notifications) nothing is sent.
func (s *Session) flushMembership() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	s.memberTimer = nil

	want := s.desiredJoin
	if want && !s.playing {
		// Rejoin only while playback actually runs.
		want = false
	}
	if want == s.joined || s.stream == nil || s.stream.ID == "" {
		s.mu.Unlock()
		return
	}
	streamID := s.stream.ID
	channel := s.channel

	// Local state flips optimistically and is not rolled back on failure.
	s.joined = want
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), membershipTimeout)
	defer cancel()

	var (
		res *api.JoinResult
		err error
	)
	action := "leave"
	if want {
		action = "join"
		res, err = s.platform.JoinStream(ctx, streamID, s.viewerID)
	} else {
		res, err = s.platform.LeaveStream(ctx, streamID, s.viewerID)
	}
	if err != nil {
		log.Warnf("%s stream for %s: %v", action, channel, err)
		s.emit(Event{Kind: EventUpdate})
		return
	}

	if res != nil {
		s.mu.Lock()
		s.viewers = res.ViewerCount
		s.viewersPin = time.Now().Add(s.counterGrace)
		s.mu.Unlock()
	}
	s.emit(Event{Kind: EventUpdate})
}
