// internal/player/mock.go
package player

import "sync"

// Mock is a test double for Output.
type Mock struct {
	mu      sync.Mutex
	sources []string
	loop    bool
	ended   listeners[struct{}]
	errs    listeners[error]
}

// NewMock creates a new mock output for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SetSource(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, url)
}

func (m *Mock) SetLoop(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = loop
}

func (m *Mock) OnEnded(fn func()) func() {
	return m.ended.add(func(struct{}) { fn() })
}

func (m *Mock) OnError(fn func(error)) func() {
	return m.errs.add(fn)
}

// Test helpers

// Sources returns every URL passed to SetSource, oldest first.
func (m *Mock) Sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sources))
	copy(out, m.sources)
	return out
}

// Source returns the last URL passed to SetSource.
func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sources) == 0 {
		return ""
	}
	return m.sources[len(m.sources)-1]
}

// Loop returns the native loop flag.
func (m *Mock) Loop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop
}

// EndedListeners returns the number of registered ended listeners.
func (m *Mock) EndedListeners() int { return m.ended.len() }

// ErrorListeners returns the number of registered error listeners.
func (m *Mock) ErrorListeners() int { return m.errs.len() }

// SimulateEnded fires the ended event.
func (m *Mock) SimulateEnded() { m.ended.emit(struct{}{}) }

// SimulateError fires the error event.
func (m *Mock) SimulateError(err error) { m.errs.emit(err) }

// Verify Mock implements Output at compile time.
var _ Output = (*Mock)(nil)
