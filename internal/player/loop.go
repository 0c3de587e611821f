package player

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*looper)(nil)

// looper plays a seekable stream and rewinds it when exhausted while the
// shared loop flag is set.
type looper struct {
	src  beep.StreamSeeker
	loop *atomic.Bool
	err  error
}

// Stream implements beep.Streamer.
func (l *looper) Stream(samples [][2]float64) (n int, ok bool) {
	if l.err != nil {
		return 0, false
	}

	rewound := false
	for n < len(samples) {
		m, ok := l.src.Stream(samples[n:])
		n += m
		if ok {
			if m == 0 {
				// Decoder has nothing right now; let the mixer call again.
				return n, true
			}
			rewound = false
			continue
		}

		if err := l.src.Err(); err != nil {
			l.err = err
			return n, n > 0
		}
		// An empty stream would rewind forever.
		if !l.loop.Load() || (rewound && m == 0) {
			return n, n > 0
		}
		if err := l.src.Seek(0); err != nil {
			l.err = err
			return n, n > 0
		}
		rewound = true
	}
	return n, true
}

// Err implements beep.Streamer.
func (l *looper) Err() error {
	if l.err != nil {
		return l.err
	}
	return l.src.Err()
}
