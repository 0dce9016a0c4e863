// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/session"
	"github.com/streamer459/streamingdev-sub000/style"
	"github.com/streamer459/streamingdev-sub000/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case searchState:
		output = b.viewSearch()
	case browseState:
		output = b.viewBrowse()
	case historyState:
		output = b.viewHistory()
	case profileState:
		output = b.viewProfile()
	case watchState:
		output = b.viewWatch()
	case qualityState:
		output = b.viewQuality()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Watch Channel"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s (tab)", icon.Get(icon.Search), suggestion)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewBrowse() string {
	return listExtraPaddingStyle.Render(b.browseC.View())
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) viewQuality() string {
	return listExtraPaddingStyle.Render(b.qualityC.View())
}

func (b *statefulBubble) viewProfile() string {
	p := b.profile
	if p == nil {
		return b.renderLines(true, []string{style.Title("Profile")})
	}

	name := p.Username
	if p.DisplayName != "" && !strings.EqualFold(p.DisplayName, p.Username) {
		name = fmt.Sprintf("%s (%s)", p.DisplayName, p.Username)
	}

	status := icon.Get(icon.Offline) + " offline"
	if p.IsLive {
		status = icon.Get(icon.Live) + " " + style.Fg(style.Red)("live now")
	}

	lines := []string{
		style.Title("Profile"),
		"",
		style.Bold(name),
		status,
		icon.Get(icon.Heart) + " " + util.Quantify(p.FollowerCount, "follower", "followers"),
	}

	if p.Bio != "" {
		lines = append(lines, "", wrap.String(style.Faint(p.Bio), b.width))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewWatch() string {
	sn := b.sess.Snapshot()

	lines := []string{
		style.Title("Watching"),
		"",
	}

	switch {
	case sn.State == session.StateNotFound:
		lines = append(lines, icon.Get(icon.Fail)+" "+sn.Channel+" was not found")
	case sn.Live:
		head := icon.Get(icon.Live) + " " + style.Bold(sn.Channel)
		if sn.Title != "" {
			head += " " + style.Faint(sn.Title)
		}
		lines = append(lines, style.Truncate(b.width)(head), "")

		stats := []string{
			icon.Get(icon.Clock) + " " + sn.Uptime,
			icon.Get(icon.Viewer) + " " + util.Quantify(sn.Viewers, "viewer", "viewers"),
			icon.Get(icon.Heart) + " " + util.Quantify(sn.Followers, "follower", "followers"),
		}
		lines = append(lines, style.Truncate(b.width)(strings.Join(stats, "  ")))

		quality := sn.Quality
		if quality == "" {
			quality = "auto"
		}
		lines = append(lines, style.Faint("quality: "+quality))

		if sn.State == session.StateInitializing {
			lines = append(lines, "", b.spinnerC.View()+" Starting playback...")
		}
		if sn.Joined {
			lines = append(lines, "", style.Faint("counted as a viewer"))
		}
	case sn.State == session.StateLoading:
		lines = append(lines, b.spinnerC.View()+" Checking "+sn.Channel+"...")
	default:
		lines = append(lines,
			icon.Get(icon.Offline)+" "+style.Bold(sn.Channel)+" is offline",
			"",
			style.Faint("waiting for the channel to go live"),
		)
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError.Error()))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
