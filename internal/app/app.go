// Package app is the root bubbletea model. It forwards user actions to the
// playback controller and redraws from the state the controller publishes.
package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/llehouerou/bilimusic/internal/keymap"
	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/ui/inputbar"
	"github.com/llehouerou/bilimusic/internal/ui/playlistpanel"
)

// Controller is the part of playback.Controller the TUI uses.
type Controller interface {
	Dispatch(in playback.Intent)
	State() playback.State
	Subscribe() *playback.Subscription
}

// FocusTarget says which component receives keys.
type FocusTarget int

const (
	FocusInput FocusTarget = iota
	FocusPlaylist
)

func (f FocusTarget) context() string {
	if f == FocusPlaylist {
		return keymap.ContextPlaylist
	}
	return keymap.ContextInput
}

// Options configures New.
type Options struct {
	Controller Controller
	Titles     *TitleSink // optional
	Logger     *log.Logger
}

// Model is the root TUI model.
type Model struct {
	ctrl   Controller
	sub    *playback.Subscription
	titles *TitleSink
	logger *log.Logger

	state  playback.State
	input  inputbar.Model
	panel  playlistpanel.Model
	focus  FocusTarget
	status string // last failure notice

	width, height int
}

// New creates the model and subscribes to controller events.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	m := Model{
		ctrl:   opts.Controller,
		sub:    opts.Controller.Subscribe(),
		titles: opts.Titles,
		logger: opts.Logger.With("component", "tui"),
		input:  inputbar.New(),
		panel:  playlistpanel.New(),
	}
	m.setState(opts.Controller.State())
	m.setFocus(FocusInput)
	return m
}

// Init starts the event watchers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		WatchEvents(m.sub),
		WatchTitle(m.titles),
	)
}

// Focus returns the focused component.
func (m Model) Focus() FocusTarget {
	return m.focus
}

// Status returns the failure notice currently shown.
func (m Model) Status() string {
	return m.status
}

func (m *Model) setFocus(f FocusTarget) {
	m.focus = f
	m.input.SetFocused(f == FocusInput)
	m.panel.SetFocused(f == FocusPlaylist)
}

func (m *Model) setState(st playback.State) {
	m.state = st
	m.panel.SetState(st.Playlist, st.SelectedID, st.LoopMode)
}
