// Package action defines how TUI components report user requests upward.
package action

import tea "github.com/charmbracelet/bubbletea"

// Action is a request emitted by a component. ActionType names it in logs.
type Action interface {
	ActionType() string
}

// Msg wraps an Action with the component that produced it.
type Msg struct {
	Source string // "playlist", "input"
	Action Action
}

var _ tea.Msg = Msg{}
