// Package mini implements a lightweight, prompt-based interface for watching channels.
package mini

import (
	"errors"

	"github.com/samber/lo"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/session"
	"github.com/streamer459/streamingdev-sub000/util"
)

var truncateAt = 100

// errQuit unwinds the state loop on a quit action.
var errQuit = errors.New("quit")

type Options struct {
	// Continue opens the watch history instead of the channel prompt.
	Continue bool
}

type mini struct {
	width, height int

	state         state
	statesHistory util.Stack[state]

	client *api.Client
	sess   *session.Session

	channel string
}

func newMini() *mini {
	client := api.New()
	return &mini{
		statesHistory: util.Stack[state]{},
		client:        client,
		sess:          session.New(client, hls.NewResolver(), session.DefaultFactory),
	}
}

func (m *mini) previousState() {
	if m.statesHistory.Len() > 0 {
		m.setState(m.statesHistory.Pop())
	}
}

func (m *mini) setState(s state) {
	m.state = s
}

func (m *mini) newState(s state) {
	if m.state == s {
		return
	}

	// Terminal states are not worth returning to.
	if !lo.Contains([]state{quitState}, m.state) {
		m.statesHistory.Push(m.state)
	}

	m.setState(s)
}

func Run(options *Options) error {
	m := newMini()
	defer m.sess.Stop()

	m.state = channelSearchState
	if options.Continue {
		m.state = historySelectState
	}

	if w, h, err := util.TerminalSize(); err == nil {
		m.width, m.height = w, h
		truncateAt = w
	}

	for {
		if err := m.handleState(); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

func (m *mini) handleState() error {
	switch m.state {
	case channelSearchState:
		return m.handleChannelSearchState()
	case browseSelectState:
		return m.handleBrowseSelectState()
	case historySelectState:
		return m.handleHistorySelectState()
	case watchState:
		return m.handleWatchState()
	case quitState:
		return errQuit
	}

	return nil
}
