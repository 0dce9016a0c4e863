// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamer459/streamingdev-sub000/push"
)

// Init initializes the terminal user interface, subscribing to the push
// channel and triggering initial data loads.
func (b *statefulBubble) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	b.pushCancel = cancel
	b.pushEvents = push.New().Listen(ctx)

	cmds := []tea.Cmd{
		textinput.Blink,
		b.waitForSessionEvent(),
		b.waitForPushEvent(),
	}

	if b.options != nil && b.options.Channel != "" {
		cmds = append(cmds, b.checkChannel(b.options.Channel), b.waitForChannelChecked(), b.startLoading())
		b.newState(loadingState)
		b.progressStatus = "Checking " + b.options.Channel + "..."
	}

	return tea.Batch(cmds...)
}
