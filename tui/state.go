// Package tui provides the primary terminal user interface implementation.
package tui

type state int

const (
	loadingState state = iota
	errorState
	searchState
	browseState
	historyState
	profileState
	watchState
	qualityState
)
