package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bilimusic/internal/keymap"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/ui/action"
	"github.com/llehouerou/bilimusic/internal/ui/inputbar"
	"github.com/llehouerou/bilimusic/internal/ui/playlistpanel"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case action.Msg:
		return m.handleAction(msg)

	case StateChangedMsg:
		m.setState(msg.State)
		return m, WatchEvents(m.sub)

	case FailedMsg:
		m.status = msg.Failure.Message()
		m.logger.Warn("intent failed", "op", msg.Failure.Op, "input", msg.Failure.Input, "err", msg.Failure.Err)
		return m, WatchEvents(m.sub)

	case TitleMsg:
		return m, tea.Batch(tea.SetWindowTitle(msg.Title), WatchTitle(m.titles))

	case ControllerClosedMsg:
		return m, tea.Quit
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keymap.NewResolver(m.focus.context()).Resolve(msg.String()) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionSwitchFocus:
		if m.focus == FocusInput {
			m.setFocus(FocusPlaylist)
		} else {
			m.setFocus(FocusInput)
		}
		return m, nil
	}
	return m.forward(msg)
}

// forward passes msg to the focused component. The input also needs
// non-key messages for its cursor blink.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == FocusPlaylist {
		m.panel, cmd = m.panel.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleAction(msg action.Msg) (tea.Model, tea.Cmd) {
	m.logger.Debug("action", "source", msg.Source, "type", msg.Action.ActionType())

	switch a := msg.Action.(type) {
	case inputbar.Submit:
		m.status = ""
		if a.Play {
			m.ctrl.Dispatch(playback.PlayAndSelect{Input: a.Text})
		} else {
			m.ctrl.Dispatch(playback.Add{Input: a.Text})
		}
	case playlistpanel.PlayEntry:
		m.status = ""
		m.ctrl.Dispatch(playback.PlayAndSelect{Input: a.ID})
	case playlistpanel.RemoveEntry:
		m.ctrl.Dispatch(playback.Remove{ID: a.ID})
	case playlistpanel.MoveEntry:
		m.ctrl.Dispatch(playback.Reorder{From: a.From, To: a.To})
	case playlistpanel.CycleLoop:
		m.ctrl.Dispatch(playback.SetLoopMode{Mode: m.state.LoopMode.Next()})
	}
	return m, nil
}
