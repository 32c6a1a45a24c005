// Package embedded bundles the default theme shipped with new sites created
// by `forge new` and refreshed by `forge theme update`.
package embedded

import "embed"

//go:embed themes
var DefaultTheme embed.FS
