package playback

import (
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/resolver"
)

// Intent is a request handled by the controller. The set is closed: only
// the types in this file implement it.
type Intent interface {
	intentName() string
}

// Add resolves free-text input, appends it to the playlist and plays it.
type Add struct{ Input string }

// Remove drops an entry from the playlist. The selection is left alone.
type Remove struct{ ID string }

// Select marks an entry as current and rebinds the output listeners.
// It does not change what the output is playing.
type Select struct{ ID string }

// PlayAndSelect resolves input and plays it without touching the playlist.
type PlayAndSelect struct{ Input string }

// SetLoopMode changes how playback continues after a track ends.
type SetLoopMode struct{ Mode playlist.LoopMode }

// Reorder moves the entry at From to To.
type Reorder struct{ From, To int }

// InitOutput binds the output registered under Target.
type InitOutput struct{ Target string }

// Ended is dispatched by the output when a track plays to completion.
type Ended struct{}

// Retry re-resolves the selected entry after a media error.
type Retry struct{}

// resolveKind says which intent started a resolve.
type resolveKind int

const (
	resolveAdd resolveKind = iota
	resolvePlay
	resolveRetry
)

// resolved carries a successful resolve back to the actor.
type resolved struct {
	kind  resolveKind
	input string
	gen   uint64
	res   *resolver.Result
}

// resolveFailed carries a failed resolve back to the actor.
type resolveFailed struct {
	kind  resolveKind
	input string
	gen   uint64
	err   error
}

// retryExhausted is dispatched when the bounded retry policy gives up.
type retryExhausted struct {
	id  string
	err error
}

func (Add) intentName() string { return "add" }
func (Remove) intentName() string { return "remove" }
func (Select) intentName() string { return "select" }
func (PlayAndSelect) intentName() string { return "play" }
func (SetLoopMode) intentName() string { return "loop_mode" }
func (Reorder) intentName() string { return "reorder" }
func (InitOutput) intentName() string { return "init_output" }
func (Ended) intentName() string { return "ended" }
func (Retry) intentName() string { return "retry" }
func (resolved) intentName() string { return "resolved" }
func (resolveFailed) intentName() string { return "resolve_failed" }
func (retryExhausted) intentName() string { return "retry_exhausted" }
