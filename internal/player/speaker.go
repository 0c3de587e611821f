package player

import (
	"context"
	"math"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

var _ Output = (*Speaker)(nil)

// SpeakerOptions configures a Speaker.
type SpeakerOptions struct {
	// Referer is sent with every audio fetch; the CDN rejects requests without one.
	Referer    string
	HTTPClient *http.Client
	Logger     *log.Logger
	// Volume is a level in [0, 1]. Zero means full volume.
	Volume float64
}

// Speaker plays remote audio through the system's default sound device.
type Speaker struct {
	client  *http.Client
	referer string
	logger  *log.Logger
	volume  float64

	loop  atomic.Bool
	ended listeners[struct{}]
	errs  listeners[error]

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	track  *track
	rate   beep.SampleRate
}

type track struct {
	file     *os.File
	streamer beep.StreamSeekCloser
}

// NewSpeaker creates a speaker output. The sound device is opened lazily on
// the first successful load.
func NewSpeaker(opts SpeakerOptions) *Speaker {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Speaker{
		client:  client,
		referer: opts.Referer,
		logger:  logger,
		volume:  opts.Volume,
	}
}

// SetSource stops the current track and starts loading url.
func (s *Speaker) SetSource(url string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.stopLocked()
	s.mu.Unlock()

	go s.load(ctx, gen, url)
}

// SetLoop toggles native looping of the current and future tracks.
func (s *Speaker) SetLoop(loop bool) {
	s.loop.Store(loop)
}

// OnEnded registers fn to run when a track plays to completion.
func (s *Speaker) OnEnded(fn func()) func() {
	return s.ended.add(func(struct{}) { fn() })
}

// OnError registers fn to run when loading or decoding fails.
func (s *Speaker) OnError(fn func(error)) func() {
	return s.errs.add(fn)
}

// Close stops playback and releases the current track.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.stopLocked()
}

func (s *Speaker) load(ctx context.Context, gen uint64, url string) {
	start := time.Now()
	f, size, err := download(ctx, s.client, url, s.referer)
	if err != nil {
		s.fail(gen, err)
		return
	}

	streamer, format, kind, err := decode(f)
	if err != nil {
		removeFile(f)
		s.fail(gen, err)
		return
	}
	s.logger.Debug("audio loaded",
		"format", kind,
		"size", humanize.Bytes(uint64(size)), //nolint:gosec // size is non-negative
		"rate", format.SampleRate,
		"took", time.Since(start).Round(time.Millisecond))

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		streamer.Close()
		removeFile(f)
		return
	}

	if s.rate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			removeFile(f)
			go s.fail(gen, err)
			return
		}
		s.rate = format.SampleRate
	}

	lp := &looper{src: streamer, loop: &s.loop}
	var out beep.Streamer = lp
	if format.SampleRate != s.rate {
		out = beep.Resample(4, format.SampleRate, s.rate, lp)
	}
	if s.volume > 0 && s.volume < 1 {
		out = &effects.Volume{Streamer: out, Base: 2, Volume: math.Log2(s.volume)}
	}

	s.track = &track{file: f, streamer: streamer}
	speaker.Play(beep.Seq(out, beep.Callback(func() {
		// Runs on the mixer goroutine while the speaker lock is held.
		go s.finished(gen, lp)
	})))
}

func (s *Speaker) finished(gen uint64, lp *looper) {
	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	if err := lp.Err(); err != nil {
		s.errs.emit(err)
		return
	}
	s.ended.emit(struct{}{})
}

func (s *Speaker) fail(gen uint64, err error) {
	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.logger.Warn("audio load failed", "err", err)
	s.errs.emit(err)
}

func (s *Speaker) stopLocked() {
	if s.rate != 0 {
		speaker.Clear()
	}
	if s.track != nil {
		s.track.streamer.Close()
		_ = os.Remove(s.track.file.Name())
		s.track = nil
	}
}
