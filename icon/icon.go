// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/streamer459/streamingdev-sub000/key"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}

// Icon identifies a symbol in the global registry.
type Icon int

const (
	Live Icon = iota + 1
	Offline
	Viewer
	Clock
	Heart
	Progress
	Search
	Fail
	Success
	Link
	Question
)

var icons = map[Icon]*iconDef{
	Live: {
		emoji:   "🔴",
		nerd:    "",
		plain:   "[LIVE]",
		kaomoji: "(╯°□°)╯",
		squares: "🟥",
	},
	Offline: {
		emoji:   "💤",
		nerd:    "",
		plain:   "[OFF]",
		kaomoji: "(-_-) zzZ",
		squares: "⬛",
	},
	Viewer: {
		emoji:   "👁",
		nerd:    "",
		plain:   "[=]",
		kaomoji: "(o_o)",
		squares: "🟦",
	},
	Clock: {
		emoji:   "⏱",
		nerd:    "",
		plain:   "[T]",
		kaomoji: "(⌚)",
		squares: "🟨",
	},
	Heart: {
		emoji:   "❤️",
		nerd:    "",
		plain:   "<3",
		kaomoji: "(♡‿♡)",
		squares: "🟪",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・・?)",
		squares: "🟧",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "[?]",
		kaomoji: "(⊙_⊙)",
		squares: "🟫",
	},
	Fail: {
		emoji:   "💢",
		nerd:    "",
		plain:   "[X]",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "[OK]",
		kaomoji: "(￣▽￣)",
		squares: "🟩",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "[->]",
		kaomoji: "(つ✧)つ",
		squares: "🟦",
	},
	Question: {
		emoji:   "❓",
		nerd:    "",
		plain:   "[??]",
		kaomoji: "(¬_¬)",
		squares: "⬜",
	},
}
