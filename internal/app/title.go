package app

// TitleSink hands window titles from the playback binder to the TUI. Only
// the latest title is kept; SetTitle never blocks.
type TitleSink struct {
	ch chan string
}

// NewTitleSink returns an empty sink.
func NewTitleSink() *TitleSink {
	return &TitleSink{ch: make(chan string, 1)}
}

// SetTitle replaces any title not yet shown.
func (s *TitleSink) SetTitle(title string) {
	for {
		select {
		case s.ch <- title:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
