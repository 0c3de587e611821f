package player

import (
	"io"

	"github.com/charmbracelet/x/ansi"
)

// TitleFunc adapts a function to a title sink.
type TitleFunc func(title string)

// SetTitle calls f.
func (f TitleFunc) SetTitle(title string) { f(title) }

// WindowTitle sets the terminal window title by writing an OSC sequence.
type WindowTitle struct {
	w io.Writer
}

// NewWindowTitle creates a title sink writing to w.
func NewWindowTitle(w io.Writer) *WindowTitle {
	return &WindowTitle{w: w}
}

// SetTitle writes the window title sequence. Write errors are ignored: the
// title is cosmetic.
func (t *WindowTitle) SetTitle(title string) {
	_, _ = io.WriteString(t.w, ansi.SetWindowTitle(title))
}

// Titler is anything that displays a title.
type Titler interface {
	SetTitle(title string)
}

// TeeTitle forwards each title to every non-nil sink, in order.
func TeeTitle(sinks ...Titler) TitleFunc {
	return func(title string) {
		for _, s := range sinks {
			if s != nil {
				s.SetTitle(title)
			}
		}
	}
}
