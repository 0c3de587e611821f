// Package inputbar is the one-line field where the user types an av/bv id
// or a video URL.
package inputbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bilimusic/internal/keymap"
	"github.com/llehouerou/bilimusic/internal/ui"
	"github.com/llehouerou/bilimusic/internal/ui/action"
	"github.com/llehouerou/bilimusic/internal/ui/styles"
)

var keys = keymap.NewResolver(keymap.ContextInput)

// Submit is emitted when the user confirms the field. Play is set for
// ctrl+p, which plays without adding to the playlist.
type Submit struct {
	Text string
	Play bool
}

// ActionType implements action.Action.
func (s Submit) ActionType() string {
	if s.Play {
		return "input.play"
	}
	return "input.add"
}

// Model wraps a bubbles text input.
type Model struct {
	ui.Base
	input textinput.Model
}

// New returns an empty, unfocused field.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "av170001, BV17x411w7KC or a video URL"
	ti.Prompt = "> "
	ti.CharLimit = 512
	return Model{input: ti}
}

// SetFocused focuses or blurs the field.
func (m *Model) SetFocused(focused bool) {
	m.Base.SetFocused(focused)
	if focused {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// SetSize sets the outer size; the field fills the border.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.input.Width = max(m.InnerWidth()-len(m.input.Prompt)-1, 1)
}

// Value returns the current text.
func (m Model) Value() string {
	return m.input.Value()
}

// Update handles keys while focused. Enter and ctrl+p submit non-blank
// text and clear the field.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.IsFocused() {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch keys.Resolve(key.String()) {
		case keymap.ActionAdd:
			return m.submit(false)
		case keymap.ActionPlay:
			return m.submit(true)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(play bool) (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	return m, func() tea.Msg {
		return action.Msg{Source: "input", Action: Submit{Text: text, Play: play}}
	}
}

// View renders the field in a bordered box.
func (m Model) View() string {
	if m.Width() == 0 {
		return ""
	}
	return styles.Panel(m.IsFocused()).
		Width(m.InnerWidth()).
		Render(m.input.View())
}
