// internal/state/interface.go
package state

// Interface defines the state store contract for dependency injection and testing.
type Interface interface {
	LoadPlayer() PlayerState
	SavePlayer(state PlayerState)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
