package playback

import "github.com/llehouerou/bilimusic/internal/errmsg"

// StateChange is emitted after an intent changes the controller state.
type StateChange struct {
	State State
}

// Failure is emitted when an intent's effects fail in a way the user
// should see: an unresolvable add or play, a missing output, or a track
// that keeps failing after the retry budget is spent.
type Failure struct {
	Op    errmsg.Op
	Input string // what the user typed, or the id being retried
	Err   error
}

// Message returns the user-facing notice for f.
func (f Failure) Message() string {
	return errmsg.FormatWith(f.Op, f.Input, f.Err)
}
