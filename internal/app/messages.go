package app

import "github.com/llehouerou/bilimusic/internal/playback"

// StateChangedMsg carries a state published by the controller.
type StateChangedMsg struct {
	State playback.State
}

// FailedMsg carries a failure the user should see.
type FailedMsg struct {
	Failure playback.Failure
}

// TitleMsg carries a new window title.
type TitleMsg struct {
	Title string
}

// ControllerClosedMsg is sent once the controller shuts down.
type ControllerClosedMsg struct{}
