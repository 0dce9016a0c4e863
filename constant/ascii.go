package constant

import _ "embed"

// AsciiArtLogo is the banner printed by the root command, embedded at build time.
//
//go:embed ascii.txt
var AsciiArtLogo string
