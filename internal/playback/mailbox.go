package playback

import "sync"

// item is a queued intent plus the Do call waiting on it, if any.
type item struct {
	intent Intent
	job    *job
}

// mailbox is an unbounded FIFO. push never blocks, so output callbacks and
// timers can dispatch from any goroutine, the actor's included.
type mailbox struct {
	mu     sync.Mutex
	items  []item
	signal chan struct{}
}

func (m *mailbox) push(it item) {
	m.mu.Lock()
	m.items = append(m.items, it)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// job tracks the outstanding work started by one Do call. Only the actor
// goroutine touches pending; a nil job ignores every call.
type job struct {
	pending int
	err     error
	reply   chan error
}

func newJob() *job {
	return &job{pending: 1, reply: make(chan error, 1)}
}

func (j *job) add() {
	if j != nil {
		j.pending++
	}
}

func (j *job) setErr(err error) {
	if j != nil && j.err == nil {
		j.err = err
	}
}

func (j *job) finish() {
	if j == nil {
		return
	}
	j.pending--
	if j.pending == 0 {
		j.reply <- j.err
	}
}
