// internal/player/output.go
package player

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownOutput is returned by Registry.Lookup for an unregistered id.
var ErrUnknownOutput = errors.New("unknown output")

// Output is an addressable audio sink.
//
// SetSource replaces whatever is playing and starts the new source. Loading
// happens asynchronously: failures are reported through OnError listeners,
// never returned. Listeners registered with OnEnded/OnError stay active until
// the returned cancel func is called.
type Output interface {
	SetSource(url string)
	SetLoop(loop bool)
	OnEnded(fn func()) (cancel func())
	OnError(fn func(error)) (cancel func())
}

// Registry maps output ids to outputs so a controller can bind by name.
type Registry struct {
	mu      sync.RWMutex
	outputs map[string]Output
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{outputs: make(map[string]Output)}
}

// Register adds or replaces the output stored under id.
func (r *Registry) Register(id string, out Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[id] = out
}

// Lookup returns the output registered under id.
func (r *Registry) Lookup(id string) (Output, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out, ok := r.outputs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, id)
	}
	return out, nil
}

// listeners is a set of callbacks keyed by registration order.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// emit calls every listener outside the lock so callbacks may cancel themselves.
func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for i := range l.next {
		if fn, ok := l.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
