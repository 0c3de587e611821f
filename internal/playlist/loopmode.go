package playlist

// LoopMode defines what happens when the current entry finishes.
type LoopMode int

const (
	LoopList   LoopMode = iota // advance through the playlist and wrap
	LoopSingle                 // repeat the current entry
	LoopNone                   // stop
)

// String returns the persisted name of the mode.
func (m LoopMode) String() string {
	switch m {
	case LoopList:
		return "LIST"
	case LoopSingle:
		return "SINGLE"
	case LoopNone:
		return "NONE"
	default:
		return "Unknown"
	}
}

// ParseLoopMode converts a persisted name back to a LoopMode.
func ParseLoopMode(s string) (LoopMode, bool) {
	switch s {
	case "LIST":
		return LoopList, true
	case "SINGLE":
		return LoopSingle, true
	case "NONE":
		return LoopNone, true
	default:
		return LoopList, false
	}
}

// Next returns the mode following m in the LIST, SINGLE, NONE cycle.
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopList:
		return LoopSingle
	case LoopSingle:
		return LoopNone
	default:
		return LoopList
	}
}
