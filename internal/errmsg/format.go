// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playlist operations
	OpAdd      Op = "add"
	OpRemove   Op = "remove"
	OpReorder  Op = "move"
	OpLoopMode Op = "set loop mode"

	// Playback operations
	OpPlay       Op = "play"
	OpPlayback   Op = "keep playing"
	OpInitOutput Op = "open output"

	// Persistence
	OpLoadPlaylist Op = "load playlist"
	OpSavePlaylist Op = "save playlist"

	// Tools
	OpDecode Op = "decode"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
