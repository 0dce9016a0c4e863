// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Platform Endpoints - these keys locate the streamer459 backend services.
const (
	APIBase  = "api.base"
	APIMedia = "api.media"
	APIPush  = "api.push"
	APISite  = "api.site"
)

// Stream Status Polling - these keys govern the cadence and tolerance of the live status poller.
const (
	PollInterval     = "poll.interval"
	PollCounterGrace = "poll.counter_grace"
)

// Media Playback - these keys maintain the state and configuration for external video players.
const (
	Player                  = "player.default"
	PlaybackQuality         = "playback.quality"
	PlaybackRememberQuality = "playback.remember_quality"
)

// Viewer Membership - these keys configure join/leave accounting against the platform.
const (
	MembershipEnable   = "membership.enable"
	MembershipDebounce = "membership.debounce"
)

// History Tracking - these keys configure the persistence of watched channels.
const (
	HistorySaveOnWatch = "history.save_on_watch"
)

// Search Interaction - these keys define the UI/UX parameters for channel discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Minimalist (Mini) Mode - these keys configure the specialized lightweight TUI.
const (
	MiniBrowseLimit = "mini.browse_limit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the primary interactive environment's styling and logic.
const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
	TUIShowViewerCounts   = "tui.show_viewer_counts"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
