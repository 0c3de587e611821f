// internal/playback/state.go
package playback

import (
	"slices"

	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/state"
)

// Unselected is the SelectedID of a controller with nothing selected.
const Unselected = ""

// State is the controller's view of the player.
// SelectedID may name an entry that has since been removed.
type State struct {
	SelectedID string
	Playlist   []playlist.Entry
	LoopMode   playlist.LoopMode
}

// FromStored builds the startup state from persisted data.
func FromStored(s state.PlayerState) State {
	entries := s.Playlist
	if entries == nil {
		entries = []playlist.Entry{}
	}
	return State{
		SelectedID: Unselected,
		Playlist:   slices.Clone(entries),
		LoopMode:   s.LoopMode,
	}
}

// Stored returns the persisted part of s.
func (s State) Stored() state.PlayerState {
	return state.PlayerState{Playlist: slices.Clone(s.Playlist), LoopMode: s.LoopMode}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Playlist = slices.Clone(s.Playlist)
	return s
}

// IndexOf returns the playlist index of id, or -1.
func (s State) IndexOf(id string) int {
	return slices.IndexFunc(s.Playlist, func(e playlist.Entry) bool { return e.ID == id })
}

// Selected returns the selected entry when it is still in the playlist.
func (s State) Selected() (playlist.Entry, bool) {
	i := s.IndexOf(s.SelectedID)
	if s.SelectedID == Unselected || i < 0 {
		return playlist.Entry{}, false
	}
	return s.Playlist[i], true
}
