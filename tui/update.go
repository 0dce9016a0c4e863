// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/history"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/internal/ui"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/open"
	"github.com/streamer459/streamingdev-sub000/profile"
	"github.com/streamer459/streamingdev-sub000/push"
	"github.com/streamer459/streamingdev-sub000/query"
	"github.com/streamer459/streamingdev-sub000/session"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case session.Event:
		return b.updateSessionEvent(msg, cmd)
	case push.Event:
		return b.updatePushEvent(msg, cmd)
	case followedMsg:
		return b.updateFollowed(msg, cmd)
	case notFoundMsg:
		b.stopLoading()
		if b.state == loadingState {
			b.previousState()
		}
		notice := fmt.Sprintf("Channel %s not found", msg.channel)
		if msg.suggestion != "" {
			notice = fmt.Sprintf("Channel %s not found, did you mean %s?", msg.channel, msg.suggestion)
		}
		return b, tea.Batch(cmd, ui.Notify(notice))
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			b.shutdown()
			return b, tea.Quit
		}

		// Input Guard: Ignore non-priority keys during asynchronous operations.
		if b.busy && b.state != watchState && b.state != errorState {
			return b, nil
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			onListBack := func(l *list.Model) tea.Cmd {
				l.ResetSelected()
				l.ResetFilter()
				return tea.Batch(cmd, l.NewStatusMessage(""))
			}

			switch b.state {
			case searchState:
				b.inputC.SetValue("")
				if b.statesHistory.Len() == 0 {
					b.shutdown()
					return b, tea.Quit
				}
			case browseState:
				if b.browseC.FilterState() != list.Unfiltered {
					b.browseC, cmd = b.browseC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.browseC)
			case historyState:
				if b.historyC.FilterState() != list.Unfiltered {
					b.historyC, cmd = b.historyC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.historyC)
			case qualityState:
				b.previousState()
				return b, cmd
			case watchState:
				b.sess.Leave()
			}

			b.previousState()
			b.stopLoading()
			return b, cmd
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case searchState:
		return b.updateSearch(msg)
	case browseState:
		return b.updateBrowse(msg)
	case historyState:
		return b.updateHistory(msg)
	case profileState:
		return b.updateProfile(msg)
	case watchState:
		return b.updateWatch(msg)
	case qualityState:
		return b.updateQuality(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

// shutdown settles the watch session and the push subscription before the
// program exits.
func (b *statefulBubble) shutdown() {
	if b.pushCancel != nil {
		b.pushCancel()
	}
	b.sess.Stop()
}

// updateSessionEvent folds one coordinator notification into the UI and
// re-arms the event wait.
func (b *statefulBubble) updateSessionEvent(ev session.Event, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{cmd, b.waitForSessionEvent()}

	switch ev.Kind {
	case session.EventNotice:
		cmds = append(cmds, ui.Notify(ev.Notice))
	case session.EventEnded:
		// The viewer closed the player window.
		if b.state == qualityState {
			b.previousState()
		}
		if b.state == watchState {
			b.previousState()
			cmds = append(cmds, ui.Notify("Playback closed"))
		}
	}

	return b, tea.Batch(cmds...)
}

// updatePushEvent reacts to server push notifications: profile cache
// invalidation and live/offline notices.
func (b *statefulBubble) updatePushEvent(ev push.Event, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{cmd, b.waitForPushEvent()}

	watching := strings.EqualFold(ev.Username, b.sess.Snapshot().Channel)

	switch ev.Type {
	case push.ProfileUpdated:
		_ = profile.Invalidate(ev.Username)
		if watching {
			b.sess.Refresh()
		}
	case push.StreamOnline:
		if watching {
			b.sess.Refresh()
		}
		if b.state == browseState {
			cmds = append(cmds, b.fetchLiveChannels(), b.waitForLiveChannels())
		}
		cmds = append(cmds, ui.Notify(fmt.Sprintf("%s went live", ev.Username)))
	case push.StreamOffline:
		if watching {
			b.sess.Refresh()
		}
		if b.state == browseState {
			cmds = append(cmds, b.fetchLiveChannels(), b.waitForLiveChannels())
		}
	}

	return b, tea.Batch(cmds...)
}

// updateFollowed applies the outcome of a follow/unfollow call: the local
// follower counter moves optimistically, failures surface as a notice only.
func (b *statefulBubble) updateFollowed(msg followedMsg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		notice := "Could not update follow state"
		if strings.Contains(msg.err.Error(), "unauthorized") {
			notice = "Sign in with `login` to follow channels"
		}
		return b, tea.Batch(cmd, ui.Notify(notice))
	}

	delta := 1
	notice := fmt.Sprintf("Following %s", msg.channel)
	if !msg.followed {
		delta = -1
		notice = fmt.Sprintf("Unfollowed %s", msg.channel)
	}
	if strings.EqualFold(msg.channel, b.sess.Snapshot().Channel) {
		b.sess.AdjustFollowers(delta)
	}

	return b, tea.Batch(cmd, ui.Notify(notice))
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds = make([]tea.Cmd, 0)
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.statesHistory.Len() > 0 {
				b.previousState()
			} else {
				b.shutdown()
				return b, tea.Quit
			}
		}
	case *api.Stream:
		cmds = append(cmds, b.startWatch(b.pendingChannel))
	case []api.LiveChannel:
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}

		cmd = b.browseC.SetItems(items)
		b.newState(browseState)
		return b, tea.Batch(cmd, b.stopLoading())
	case *api.Profile:
		b.profile = msg
		b.profileOf = msg.Username
		b.newState(profileState)
		return b, b.stopLoading()
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.browse):
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.fetchLiveChannels(), b.waitForLiveChannels(), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.openHistory):
			historyCmd, err := b.loadHistory()
			if err != nil {
				b.raiseError(err)
				return b, nil
			}
			b.newState(historyState)
			return b, historyCmd
		case bubblesKey.Matches(msg, b.keymap.confirm) && b.inputC.Value() != "":
			channel := b.inputC.Value()
			b.progressStatus = fmt.Sprintf("Checking %s...", channel)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.checkChannel(channel), b.waitForChannelChecked(), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion) && b.searchSuggestion.IsPresent():
			b.inputC.SetValue(b.searchSuggestion.MustGet())
			b.searchSuggestion = mo.None[string]()
			b.inputC.SetCursor(len(b.inputC.Value()))
			return b, nil
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)

	if b.inputC.Value() != "" && viper.GetBool(key.SearchShowQuerySuggestions) {
		if suggestion, ok := query.Suggest(b.inputC.Value()).Get(); ok && suggestion != b.inputC.Value() {
			b.searchSuggestion = mo.Some(suggestion)
		} else {
			b.searchSuggestion = mo.None[string]()
		}
	} else if b.searchSuggestion.IsPresent() {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

func (b *statefulBubble) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case []api.LiveChannel:
		// A push-triggered refresh landed while the list is open.
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}
		return b, b.browseC.SetItems(items)
	case tea.KeyMsg:
		if b.browseC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.browseC.Items()); n > 0 && b.browseC.Index() == 0 {
				b.browseC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.browseC.Items()); n > 0 && b.browseC.Index() == n-1 {
				b.browseC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.refresh):
			b.progressStatus = "Fetching live channels..."
			return b, tea.Batch(b.startLoading(), b.fetchLiveChannels(), b.waitForLiveChannels())
		case bubblesKey.Matches(msg, b.keymap.profile):
			if b.browseC.SelectedItem() == nil {
				break
			}
			channel := b.browseC.SelectedItem().(*listItem).internal.(api.LiveChannel)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.fetchProfile(channel.Username), b.waitForProfile(), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if b.browseC.SelectedItem() == nil {
				break
			}
			channel := b.browseC.SelectedItem().(*listItem).internal.(api.LiveChannel)
			if err := open.Start(channelURL(channel.Username)); err != nil {
				b.raiseError(err)
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.browseC.SelectedItem() == nil {
				break
			}
			channel := b.browseC.SelectedItem().(*listItem).internal.(api.LiveChannel)
			_ = query.Remember(strings.ToLower(channel.Username), 2)
			return b, b.startWatch(channel.Username)
		}
	}

	b.browseC, cmd = b.browseC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.historyC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.historyC.Items()); n > 0 && b.historyC.Index() == 0 {
				b.historyC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.historyC.Items()); n > 0 && b.historyC.Index() == n-1 {
				b.historyC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if b.historyC.SelectedItem() != nil {
				entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedChannel)
				_ = history.Remove(entry)
				historyCmd, err := b.loadHistory()
				if err != nil {
					b.raiseError(err)
					return b, nil
				}
				return b, historyCmd
			}
		case bubblesKey.Matches(msg, b.keymap.profile):
			if b.historyC.SelectedItem() == nil {
				break
			}
			entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedChannel)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.fetchProfile(entry.Name), b.waitForProfile(), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if b.historyC.SelectedItem() == nil {
				break
			}
			entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedChannel)
			if err := open.Start(channelURL(entry.Name)); err != nil {
				b.raiseError(err)
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.historyC.SelectedItem() == nil {
				break
			}
			entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedChannel)
			b.progressStatus = fmt.Sprintf("Checking %s...", entry.Name)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.checkChannel(entry.Name), b.waitForChannelChecked(), b.spinnerC.Tick)
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateProfile(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if err := open.Start(channelURL(b.profileOf)); err != nil {
				b.raiseError(err)
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			b.progressStatus = fmt.Sprintf("Checking %s...", b.profileOf)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.checkChannel(b.profileOf), b.waitForChannelChecked(), b.spinnerC.Tick)
		}
	}

	return b, nil
}

func (b *statefulBubble) updateWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		sn := b.sess.Snapshot()

		switch {
		case bubblesKey.Matches(msg, b.keymap.pause):
			if err := b.sess.TogglePause(); err != nil {
				return b, ui.Notify(err.Error())
			}
		case bubblesKey.Matches(msg, b.keymap.quality):
			if len(sn.Variants) == 0 {
				return b, ui.Notify("No playback to switch")
			}
			qualityCmd := b.loadQualities(sn)
			b.newState(qualityState)
			return b, qualityCmd
		case bubblesKey.Matches(msg, b.keymap.follow):
			return b, b.setFollow(sn.Channel, true)
		case bubblesKey.Matches(msg, b.keymap.unfollow):
			return b, b.setFollow(sn.Channel, false)
		case bubblesKey.Matches(msg, b.keymap.refresh):
			b.sess.Refresh()
		case bubblesKey.Matches(msg, b.keymap.profile):
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.fetchProfile(sn.Channel), b.waitForProfile(), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if err := open.Start(channelURL(sn.Channel)); err != nil {
				b.raiseError(err)
			}
		}
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateQuality(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.qualityC.Items()); n > 0 && b.qualityC.Index() == 0 {
				b.qualityC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.qualityC.Items()); n > 0 && b.qualityC.Index() == n-1 {
				b.qualityC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.qualityC.SelectedItem() == nil {
				break
			}
			variant := b.qualityC.SelectedItem().(*listItem).internal.(hls.Variant)
			b.previousState()
			return b, func() tea.Msg {
				// Switching reloads the source in place and seeks back; it can
				// take a moment, so it runs off the update loop.
				if err := b.sess.SwitchQuality(variant.Name); err != nil {
					return ui.Notify(err.Error())()
				}
				return nil
			}
		}
	}

	b.qualityC, cmd = b.qualityC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.shutdown()
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}
	return b, cmd
}

// channelURL builds the web page address of a channel.
func channelURL(channel string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(viper.GetString(key.APISite), "/"), channel)
}
