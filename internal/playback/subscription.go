package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	Failed       <-chan Failure
	Done         <-chan struct{}

	// Internal write channels
	stateCh  chan StateChange
	failedCh chan Failure
	doneCh   chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan StateChange, eventBufferSize),
		failedCh: make(chan Failure, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Failed = s.failedCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking). Each event carries
// the full state, so when the buffer is full the oldest one is dropped.
func (s *Subscription) sendState(e StateChange) {
	for {
		select {
		case s.stateCh <- e:
			return
		default:
		}
		select {
		case <-s.stateCh:
		default:
		}
	}
}

// sendFailure sends a failure event (non-blocking).
func (s *Subscription) sendFailure(e Failure) {
	select {
	case s.failedCh <- e:
	default:
	}
}
