package playlistpanel

import "github.com/llehouerou/bilimusic/internal/ui/action"

// PlayEntry asks for the entry to be resolved and played.
type PlayEntry struct {
	ID string
}

// ActionType implements action.Action.
func (PlayEntry) ActionType() string { return "playlist.play" }

// RemoveEntry asks for the entry to be dropped from the playlist.
type RemoveEntry struct {
	ID string
}

// ActionType implements action.Action.
func (RemoveEntry) ActionType() string { return "playlist.remove" }

// MoveEntry asks for the entry at From to move to To.
type MoveEntry struct {
	From, To int
}

// ActionType implements action.Action.
func (MoveEntry) ActionType() string { return "playlist.move" }

// CycleLoop asks for the next loop mode.
type CycleLoop struct{}

// ActionType implements action.Action.
func (CycleLoop) ActionType() string { return "playlist.cycle_loop" }

// ActionMsg wraps a playlist panel action.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "playlist", Action: a}
}
