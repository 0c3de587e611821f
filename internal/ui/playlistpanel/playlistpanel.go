// Package playlistpanel renders the playlist and turns list keys into
// playlist actions.
package playlistpanel

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bilimusic/internal/keymap"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/ui"
	"github.com/llehouerou/bilimusic/internal/ui/action"
	"github.com/llehouerou/bilimusic/internal/ui/cursor"
)

var keys = keymap.NewResolver(keymap.ContextPlaylist)

// Model is the playlist panel. It never mutates the playlist itself; it
// shows the latest state it was given and emits actions.
type Model struct {
	ui.Base
	entries    []playlist.Entry
	selectedID string
	loop       playlist.LoopMode
	cursor     cursor.Cursor
}

// New returns an empty panel.
func New() Model {
	return Model{cursor: cursor.New(ui.ScrollMargin)}
}

// SetState replaces what the panel shows. The cursor stays on the entry it
// was on when that entry still exists, so it follows reorders.
func (m *Model) SetState(entries []playlist.Entry, selectedID string, loop playlist.LoopMode) {
	var cursorID string
	if e, ok := m.CursorEntry(); ok {
		cursorID = e.ID
	}
	m.entries = entries
	m.selectedID = selectedID
	m.loop = loop

	for i, e := range entries {
		if e.ID == cursorID {
			m.cursor.Jump(i, len(entries), m.ListHeight())
			return
		}
	}
	m.cursor.Clamp(len(entries), m.ListHeight())
}

// SetSize resizes the panel and keeps the cursor visible.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.cursor.Clamp(len(m.entries), m.ListHeight())
}

// CursorEntry returns the entry under the cursor.
func (m Model) CursorEntry() (playlist.Entry, bool) {
	i := m.cursor.Pos()
	if i < 0 || i >= len(m.entries) {
		return playlist.Entry{}, false
	}
	return m.entries[i], true
}

// Update handles keys while the panel is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsFocused() {
		return m, nil
	}

	if m.cursor.HandleKey(key.String(), len(m.entries), m.ListHeight()) {
		return m, nil
	}

	switch keys.Resolve(key.String()) {
	case keymap.ActionCycleLoop:
		return m, emit(CycleLoop{})
	case keymap.ActionPlayEntry:
		if e, ok := m.CursorEntry(); ok {
			return m, emit(PlayEntry{ID: e.ID})
		}
	case keymap.ActionRemove:
		if e, ok := m.CursorEntry(); ok {
			return m, emit(RemoveEntry{ID: e.ID})
		}
	case keymap.ActionMoveItemDown:
		return m, m.move(1)
	case keymap.ActionMoveItemUp:
		return m, m.move(-1)
	}
	return m, nil
}

func (m Model) move(delta int) tea.Cmd {
	from := m.cursor.Pos()
	to := from + delta
	if len(m.entries) == 0 || to < 0 || to >= len(m.entries) {
		return nil
	}
	return emit(MoveEntry{From: from, To: to})
}

func emit(a action.Action) tea.Cmd {
	return func() tea.Msg { return ActionMsg(a) }
}
