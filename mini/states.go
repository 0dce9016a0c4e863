package mini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/history"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/query"
	"github.com/streamer459/streamingdev-sub000/session"
	"github.com/streamer459/streamingdev-sub000/style"
	"github.com/streamer459/streamingdev-sub000/util"
)

type state int

const (
	channelSearchState state = iota + 1
	browseSelectState
	historySelectState
	watchState
	quitState
)

func (m *mini) handleChannelSearchState() error {
	title("Watch Channel")
	hint("type a channel name / b browse live / c continue from history / q quit")

	var searchLoop func() error
	searchLoop = func() error {
		in, err := getInput(func(s string) bool {
			return s != ""
		})
		if err != nil {
			return err
		}

		switch in.value {
		case "q":
			m.newState(quitState)
			return nil
		case "b":
			m.newState(browseSelectState)
			return nil
		case "c":
			m.newState(historySelectState)
			return nil
		}

		channel := strings.ToLower(in.value)

		erase := progress("Checking channel..")
		_, err = m.client.StreamInfo(context.Background(), channel)
		erase()

		switch {
		case errors.Is(err, api.ErrNotFound):
			if suggestion, ok := query.Suggest(channel).Get(); ok && suggestion != channel {
				fail(fmt.Sprintf("Channel not found, did you mean %s?", suggestion))
			} else {
				fail("Channel not found")
			}
			return searchLoop()
		case err != nil:
			return err
		}

		_ = query.Remember(channel, 1)

		m.channel = channel
		m.newState(watchState)
		return nil
	}

	return searchLoop()
}

func (m *mini) handleBrowseSelectState() error {
	erase := progress("Fetching live channels..")
	live, err := m.client.LiveChannels(context.Background())
	erase()
	if err != nil {
		return err
	}

	if limit := viper.GetInt(key.MiniBrowseLimit); limit > 0 && len(live) > limit {
		live = live[:limit]
	}

	if len(live) == 0 {
		fail("Nobody is live right now")
		m.previousState()
		return nil
	}

	title("Live Channels >>")
	b, choice, err := menu(live, back)
	if err != nil {
		return err
	}

	switch {
	case quit.eq(b):
		m.newState(quitState)
	case back.eq(b):
		m.previousState()
	default:
		m.channel = strings.ToLower(choice.Username)
		m.newState(watchState)
	}

	return nil
}

func (m *mini) handleHistorySelectState() error {
	saved, err := history.Get()
	if err != nil {
		return err
	}

	if len(saved) == 0 {
		fail("History is empty")
		m.setState(channelSearchState)
		return nil
	}

	channels := lo.Values(saved)
	slices.SortFunc(channels, func(a, b *history.SavedChannel) int {
		return b.WatchedAt.Compare(a.WatchedAt)
	})

	title("History >>")
	b, choice, err := menu(channels, back)
	if err != nil {
		return err
	}

	switch {
	case quit.eq(b):
		m.newState(quitState)
	case back.eq(b):
		m.setState(channelSearchState)
	default:
		m.channel = strings.ToLower(choice.Name)
		m.newState(watchState)
	}

	return nil
}

func (m *mini) handleWatchState() error {
	if m.sess.Snapshot().Channel != m.channel {
		if err := m.sess.Watch(m.channel); err != nil {
			return err
		}
		// Give the first poll a beat so the initial render is not "loading".
		time.Sleep(300 * time.Millisecond)
	}

	for {
		notices := m.drainNotices()

		sn := m.sess.Snapshot()
		if sn.State == session.StateIdle {
			fail("Playback closed")
			m.channel = ""
			m.previousState()
			return nil
		}

		util.ClearScreen()
		renderStatus(sn)
		for _, notice := range notices {
			fmt.Println(style.Faint(notice))
		}

		binds := []*bind{refresh, pause, quality, back}
		if sn.State == session.StateNotFound {
			binds = []*bind{back}
		}

		b, _, err := menu([]fmt.Stringer{}, binds...)
		if err != nil {
			return err
		}

		switch b {
		case refresh:
			m.sess.Refresh()
		case pause:
			if err := m.sess.TogglePause(); err != nil {
				fail(err.Error())
			}
		case quality:
			if err := m.handleQualitySelect(); err != nil {
				return err
			}
		case back:
			m.sess.Leave()
			m.channel = ""
			m.previousState()
			return nil
		case quit:
			m.sess.Leave()
			m.newState(quitState)
			return nil
		}
	}
}

// entry adapts a plain string to the menu item interface.
type entry string

func (e entry) String() string { return string(e) }

func (m *mini) handleQualitySelect() error {
	sn := m.sess.Snapshot()
	if len(sn.Variants) == 0 {
		fail("No playback to switch")
		return nil
	}

	title("Quality >>")
	names := lo.Map(hls.Names(sn.Variants), func(name string, _ int) entry {
		if strings.EqualFold(name, sn.Quality) {
			return entry(name + " (current)")
		}
		return entry(name)
	})

	b, choice, err := menu(names, back)
	if err != nil {
		return err
	}

	switch {
	case quit.eq(b):
		m.newState(quitState)
	case back.eq(b):
	default:
		name := strings.TrimSuffix(string(choice), " (current)")
		if err := m.sess.SwitchQuality(name); err != nil {
			fail(err.Error())
		}
	}

	return nil
}

func renderStatus(sn session.Snapshot) {
	title(sn.Channel)

	switch sn.State {
	case session.StateLoading:
		fmt.Println("Loading..")
	case session.StateOffline:
		fmt.Printf("%s Offline, waiting for the stream to start\n", icon.Get(icon.Offline))
	case session.StateNotFound:
		fmt.Printf("%s Channel not found\n", icon.Get(icon.Fail))
	case session.StateInitializing, session.StateWatching:
		fmt.Printf("%s %s\n", icon.Get(icon.Live), style.Bold(clip(sn.Title)))
		fmt.Printf("%s %s   %s %s   %s %s\n",
			icon.Get(icon.Clock), sn.Uptime,
			icon.Get(icon.Viewer), util.Quantify(sn.Viewers, "viewer", "viewers"),
			icon.Get(icon.Heart), util.Quantify(sn.Followers, "follower", "followers"),
		)
		if sn.Quality != "" {
			fmt.Println(style.Faint("quality: " + sn.Quality))
		}
	}
}

// drainNotices empties the event channel and keeps the human-readable
// notices. Updates carry no payload; the snapshot is re-read instead.
func (m *mini) drainNotices() (notices []string) {
	for {
		select {
		case ev := <-m.sess.Events():
			if ev.Kind == session.EventNotice {
				notices = append(notices, ev.Notice)
			}
		default:
			if len(notices) > 3 {
				notices = notices[len(notices)-3:]
			}
			return notices
		}
	}
}
