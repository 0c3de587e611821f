// Package icons picks the glyphs used for loop modes.
package icons

import "github.com/llehouerou/bilimusic/internal/playlist"

// Style is an icon set name from the config.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons is one icon set.
type Icons struct {
	LoopList   string
	LoopSingle string
	LoopNone   string
}

var (
	nerdIcons = Icons{
		LoopList:   "󰑖", // nf-md-repeat
		LoopSingle: "󰑘", // nf-md-repeat_once
		LoopNone:   "󰑗", // nf-md-repeat_off
	}

	unicodeIcons = Icons{
		LoopList:   "🔁",
		LoopSingle: "🔂",
		LoopNone:   "⏹",
	}

	// The mode name is always printed next to the icon, so "none" needs nothing.
	noneIcons = Icons{}

	current = noneIcons
)

// Init selects the icon set. Unknown names select StyleNone.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

// Loop returns the icon for mode, possibly empty.
func Loop(mode playlist.LoopMode) string {
	switch mode {
	case playlist.LoopSingle:
		return current.LoopSingle
	case playlist.LoopNone:
		return current.LoopNone
	default:
		return current.LoopList
	}
}
