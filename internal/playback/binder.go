package playback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/metrics"
	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/resolver"
)

const (
	// DefaultRetryDelay is the wait between a media error and the re-resolve.
	DefaultRetryDelay = time.Second

	titleSuffix = " - BILI MUSIC"
)

// Titler receives the display title of the playing track.
type Titler interface {
	SetTitle(title string)
}

// BinderOptions configures a Binder. Zero values select defaults.
type BinderOptions struct {
	RetryDelay time.Duration
	// MaxRetries bounds consecutive retries of one entry. Zero retries forever.
	MaxRetries int
	Title      Titler
	Logger     *log.Logger
}

// Binder owns the link between the controller and one media output: the
// output itself, the single ended and error listener pair registered on it,
// and the pending retry timer.
type Binder struct {
	mu sync.Mutex

	out         player.Output
	cancelEnded func()
	cancelError func()

	retryDelay time.Duration
	maxRetries int
	retryTimer *time.Timer
	retryFor   string
	attempts   int

	title  Titler
	logger *log.Logger
}

// NewBinder creates a binder with no output bound.
func NewBinder(opts BinderOptions) *Binder {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Title == nil {
		opts.Title = player.TitleFunc(func(string) {})
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Binder{
		retryDelay: opts.RetryDelay,
		maxRetries: opts.MaxRetries,
		title:      opts.Title,
		logger:     opts.Logger.With("component", "binder"),
	}
}

// Bind makes out the target of future calls. Binding the same output again
// is a no-op; binding a new one detaches the listeners from the old one.
func (b *Binder) Bind(out player.Output) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.out == out {
		return
	}
	b.detachLocked()
	b.stopRetryLocked()
	b.out = out
}

// Bound reports whether an output is bound.
func (b *Binder) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out != nil
}

// ApplyResolution starts playing res and updates the title.
func (b *Binder) ApplyResolution(res *resolver.Result) {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()

	if out == nil {
		b.logger.Debug("no output bound, only updating title", "id", res.CanonicalID)
	} else {
		out.SetSource(res.AudioURL)
	}
	b.title.SetTitle(res.Title + titleSuffix)
}

// SyncListeners re-registers the output listeners for st. Any pending retry
// is cancelled. Ended events dispatch Ended; error events schedule Retry.
func (b *Binder) SyncListeners(st State, dispatch func(Intent)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopRetryLocked()
	b.detachLocked()
	if b.out == nil {
		b.logger.Debug("sync skipped, no output bound")
		return
	}

	b.out.SetLoop(st.LoopMode == playlist.LoopSingle)

	selected := st.SelectedID
	b.cancelEnded = b.out.OnEnded(func() {
		b.resetAttempts()
		dispatch(Ended{})
	})
	b.cancelError = b.out.OnError(func(err error) {
		b.logger.Warn("media error", "id", selected, "err", err)
		b.ScheduleRetry(selected, err, dispatch)
	})
}

// ScheduleRetry arranges for Retry to be dispatched after the retry delay,
// replacing any retry already pending. When the attempt budget for id is
// spent it dispatches retryExhausted instead. dispatch must not block.
func (b *Binder) ScheduleRetry(id string, cause error, dispatch func(Intent)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopRetryLocked()

	if id != b.retryFor {
		b.retryFor = id
		b.attempts = 0
	}
	b.attempts++
	if b.maxRetries > 0 && b.attempts > b.maxRetries {
		b.logger.Error("giving up on track", "id", id, "attempts", b.attempts-1, "err", cause)
		b.attempts = 0
		dispatch(retryExhausted{id: id, err: cause})
		return
	}

	metrics.PlaybackRetries.Inc()
	var t *time.Timer
	t = time.AfterFunc(b.retryDelay, func() {
		b.mu.Lock()
		current := b.retryTimer == t
		if current {
			b.retryTimer = nil
		}
		b.mu.Unlock()
		if current {
			dispatch(Retry{})
		}
	})
	b.retryTimer = t
}

// RetryPending reports whether a retry timer is armed.
func (b *Binder) RetryPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.retryTimer != nil
}

// Close detaches from the output and cancels any pending retry.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopRetryLocked()
	b.detachLocked()
}

func (b *Binder) resetAttempts() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}

func (b *Binder) detachLocked() {
	if b.cancelEnded != nil {
		b.cancelEnded()
		b.cancelEnded = nil
	}
	if b.cancelError != nil {
		b.cancelError()
		b.cancelError = nil
	}
}

func (b *Binder) stopRetryLocked() {
	if b.retryTimer != nil {
		b.retryTimer.Stop()
		b.retryTimer = nil
	}
}

// NextAfterEnd returns the entry to play when the selected one ends.
// Only LIST advances: it wraps from the last entry to the first and starts
// from the first when the selection is no longer in the playlist. SINGLE
// is handled by the output's native loop and NONE stops.
func NextAfterEnd(st State) (string, bool) {
	if st.LoopMode != playlist.LoopList || len(st.Playlist) == 0 {
		return "", false
	}
	i := st.IndexOf(st.SelectedID)
	if i < 0 || i == len(st.Playlist)-1 {
		return st.Playlist[0].ID, true
	}
	return st.Playlist[i+1].ID, true
}
