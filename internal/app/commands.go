package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bilimusic/internal/playback"
)

// WatchEvents waits for the next controller event. Handlers re-arm it
// after every event.
func WatchEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg{State: e.State}
		case f := <-sub.Failed:
			return FailedMsg{Failure: f}
		case <-sub.Done:
			return ControllerClosedMsg{}
		}
	}
}

// WatchTitle waits for the next window title.
func WatchTitle(s *TitleSink) tea.Cmd {
	if s == nil {
		return nil
	}
	return waitForChannel(s.ch, func(title string, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return TitleMsg{Title: title}
	})
}

// waitForChannel turns the next receive on ch into a message. onResult
// gets ok=false once ch is closed.
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		return onResult(v, ok)
	}
}
