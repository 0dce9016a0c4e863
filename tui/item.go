// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/history"
	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/style"
	"github.com/streamer459/streamingdev-sub000/util"
)

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
	marked   bool
}

func (t *listItem) toggleMark() {
	t.marked = !t.marked
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case api.LiveChannel:
		var sb strings.Builder
		sb.WriteString(icon.Get(icon.Live))
		sb.WriteString(" ")
		sb.WriteString(e.Username)
		if e.Title != "" {
			sb.WriteString(" ")
			sb.WriteString(style.Faint(e.Title))
		}
		title = sb.String()
	case *history.SavedChannel:
		title = e.Name
	case hls.Variant:
		title = e.Name
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Success)))
	}

	return
}

// Description retrieves the secondary metadata line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case api.LiveChannel:
		var parts []string
		if e.Uptime != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(icon.Get(icon.Clock)+" "+e.Uptime))
		}
		if viper.GetBool(key.TUIShowViewerCounts) {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.AccentColor).Render(
				icon.Get(icon.Viewer)+" "+util.Quantify(e.ViewerCount, "viewer", "viewers"),
			))
		}
		description = strings.Join(parts, " • ")
	case *history.SavedChannel:
		var parts []string
		if e.Title != "" {
			parts = append(parts, e.Title)
		}
		if e.Quality != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(e.Quality))
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(util.Quantify(e.Visits, "visit", "visits")))
		description = strings.Join(parts, " • ")
	case hls.Variant:
		var parts []string
		if e.Resolution != "" {
			parts = append(parts, e.Resolution)
		}
		if e.Bandwidth > 0 {
			parts = append(parts, fmt.Sprintf("%d kbps", e.Bandwidth/1000))
		}
		description = strings.Join(parts, " • ")
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case api.LiveChannel:
		if e.Title != "" {
			return e.Username + " " + e.Title
		}
		return e.Username
	case *history.SavedChannel:
		return e.Name
	case hls.Variant:
		return e.Name
	case string:
		return e
	default:
		return ""
	}
}
