//go:build !windows

// Package stderr captures output that C libraries (ALSA, faad2) write straight
// to file descriptor 2, bypassing Go's os.Stderr. While the TUI owns the
// terminal those lines would corrupt the layout, so they go to the log instead.
package stderr

import (
	"os"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
)

var (
	mu         sync.Mutex
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	done       chan struct{}
)

// Start redirects fd 2 into logger at warn level.
// It must be called before the audio device is opened. On failure the
// program can continue: output keeps going to the terminal.
func Start(logger *log.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if pipeRead != nil {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr = orig
	pipeRead, pipeWrite = r, w
	done = make(chan struct{})

	go func(d chan struct{}) {
		defer close(d)
		forward(r, logger)
	}(done)

	return nil
}

// Stop restores the original stderr and waits for buffered lines to be logged.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if pipeRead == nil {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	// Closing the write end lets the reader drain and hit EOF.
	pipeWrite.Close()
	<-done
	pipeRead.Close()
	pipeRead, pipeWrite = nil, nil
}
