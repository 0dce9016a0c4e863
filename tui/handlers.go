// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/history"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/profile"
	"github.com/streamer459/streamingdev-sub000/query"
	"github.com/streamer459/streamingdev-sub000/session"
)

// notFoundMsg reports that a checked channel does not exist.
type notFoundMsg struct {
	channel    string
	suggestion string
}

// followedMsg reports the outcome of a follow/unfollow call.
type followedMsg struct {
	channel  string
	followed bool
	err      error
}

// waitForSessionEvent relays one coordinator notification into the Bubble
// Tea loop. The update handler re-arms it after every message.
func (b *statefulBubble) waitForSessionEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-b.sess.Events():
			return ev
		case <-b.sess.Done():
			return nil
		}
	}
}

// waitForPushEvent relays one push notification. Re-armed like the session
// event wait; yields nil once the listener context dies.
func (b *statefulBubble) waitForPushEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-b.pushEvents
		if !ok {
			return nil
		}
		return ev
	}
}

func (b *statefulBubble) loadHistory() (tea.Cmd, error) {
	saved, err := history.Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})

	var items []list.Item
	for _, e := range entries {
		items = append(items, &listItem{
			internal: e,
		})
	}

	return b.historyC.SetItems(items), nil
}

// fetchLiveChannels loads the live-channel directory into the browse list.
func (b *statefulBubble) fetchLiveChannels() tea.Cmd {
	return func() tea.Msg {
		log.Info("fetching the live channel directory")
		b.progressStatus = "Fetching live channels..."

		live, err := b.client.LiveChannels(context.Background())
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		sort.Slice(live, func(i, j int) bool {
			return live[i].ViewerCount > live[j].ViewerCount
		})

		b.liveChannelsChannel <- live
		return nil
	}
}

func (b *statefulBubble) waitForLiveChannels() tea.Cmd {
	return func() tea.Msg {
		select {
		case live := <-b.liveChannelsChannel:
			return live
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// checkChannel verifies that a channel exists before a watch session starts.
// An unknown channel produces a notFoundMsg with a fuzzy suggestion instead
// of an error screen.
func (b *statefulBubble) checkChannel(channel string) tea.Cmd {
	channel = strings.ToLower(strings.TrimSpace(channel))
	return func() tea.Msg {
		log.Info("checking channel " + channel)
		b.progressStatus = fmt.Sprintf("Checking %s...", channel)

		stream, err := b.client.StreamInfo(context.Background(), channel)
		if errors.Is(err, api.ErrNotFound) {
			suggestion, _ := query.Suggest(channel).Get()
			if suggestion == channel {
				suggestion = ""
			}
			b.channelCheckedChannel <- nil
			return notFoundMsg{channel: channel, suggestion: suggestion}
		}
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		_ = query.Remember(channel, 1)
		b.pendingChannel = channel
		b.channelCheckedChannel <- stream
		return nil
	}
}

func (b *statefulBubble) waitForChannelChecked() tea.Cmd {
	return func() tea.Msg {
		select {
		case stream := <-b.channelCheckedChannel:
			if stream == nil {
				// The notFoundMsg is delivered by checkChannel itself.
				return nil
			}
			return stream
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// startWatch hands the checked channel to the session coordinator and
// switches to the watch view. The session emits updates from here on.
func (b *statefulBubble) startWatch(channel string) tea.Cmd {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if err := b.sess.Watch(channel); err != nil {
		b.raiseError(err)
		return nil
	}

	b.newState(watchState)
	return b.stopLoading()
}

// fetchProfile loads a channel's public profile through the multi-day cache.
func (b *statefulBubble) fetchProfile(username string) tea.Cmd {
	return func() tea.Msg {
		log.Info("fetching profile of " + username)
		b.progressStatus = fmt.Sprintf("Fetching profile of %s...", username)

		p, err := profile.Get(context.Background(), b.client, username)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		b.profileChannel <- p
		return nil
	}
}

func (b *statefulBubble) waitForProfile() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-b.profileChannel:
			return p
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// setFollow issues a follow or unfollow for a channel. Best effort: the
// result lands as a followedMsg and never raises the error screen.
func (b *statefulBubble) setFollow(channel string, follow bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if follow {
			err = b.client.Follow(context.Background(), channel)
		} else {
			err = b.client.Unfollow(context.Background(), channel)
		}
		if err != nil {
			log.Warnf("follow state for %s: %v", channel, err)
		}
		return followedMsg{channel: channel, followed: follow, err: err}
	}
}

// loadQualities fills the quality list from the current session snapshot.
func (b *statefulBubble) loadQualities(sn session.Snapshot) tea.Cmd {
	items := []list.Item{&listItem{
		internal: hls.Variant{Name: hls.Auto},
		marked:   strings.EqualFold(sn.Quality, hls.Auto),
	}}
	for _, v := range sn.Variants {
		items = append(items, &listItem{
			internal: v,
			marked:   strings.EqualFold(sn.Quality, v.Name),
		})
	}

	return b.qualityC.SetItems(items)
}
