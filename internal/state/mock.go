// internal/state/mock.go
package state

import (
	"slices"
	"sync"
)

// Mock is a test double for Manager.
type Mock struct {
	mu     sync.Mutex
	loaded PlayerState
	saves  []PlayerState
	closed bool
}

// NewMock creates a new mock state store holding the default state.
func NewMock() *Mock {
	return &Mock{loaded: DefaultPlayerState()}
}

func (m *Mock) LoadPlayer() PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.loaded
	s.Playlist = slices.Clone(s.Playlist)
	return s
}

func (m *Mock) SavePlayer(state PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.Playlist = slices.Clone(state.Playlist)
	m.saves = append(m.saves, state)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetPlayer sets the state returned by LoadPlayer.
func (m *Mock) SetPlayer(state PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = state
}

// Saves returns every state passed to SavePlayer, oldest first.
func (m *Mock) Saves() []PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.saves)
}

// LastSave returns the most recent saved state and whether any exists.
func (m *Mock) LastSave() (PlayerState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return PlayerState{}, false
	}
	return m.saves[len(m.saves)-1], true
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
