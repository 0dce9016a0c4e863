// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Streamwatch is the canonical application identifier used for filesystem paths and CLI branding.
	Streamwatch = "streamwatch"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent identifies this client on requests to the platform API and media hosts.
	UserAgent = Streamwatch + "/" + Version
)

// Build metadata, overridden at link time by the release pipeline.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
