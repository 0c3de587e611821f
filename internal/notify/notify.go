// Package notify sends desktop notifications over D-Bus.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/bilimusic/internal/logging"
)

const (
	appName = "BILI MUSIC"

	// nowPlayingTimeout is how long a track notification stays up, in ms.
	nowPlayingTimeout = 5000

	// notifyTimeout bounds one call to the notification daemon.
	notifyTimeout = 2 * time.Second
)

// Urgency is a notification priority from the freedesktop protocol.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Timeout    int32  // ms, -1 = server default, 0 = never expire
	ReplacesID uint32 // 0 = new notification
	Urgency    Urgency
}

// Notifier sends notifications.
type Notifier interface {
	// Notify shows n and returns its id, or 0 when notifications are
	// unavailable.
	Notify(ctx context.Context, n Notification) (uint32, error)
}

// NowPlaying shows the playing track as a notification. Each new title
// replaces the previous notification instead of stacking. It satisfies
// the playback title sink.
//
// SetTitle never blocks: titles are handed to a worker goroutine, latest
// wins, and a title equal to the last one shown is skipped.
type NowPlaying struct {
	notifier Notifier
	logger   *log.Logger
	pending  chan string

	mu   sync.Mutex
	last string
}

// NewNowPlaying wraps notifier. The worker stops when ctx is canceled.
func NewNowPlaying(ctx context.Context, notifier Notifier, logger *log.Logger) *NowPlaying {
	if logger == nil {
		logger = logging.Discard()
	}
	p := &NowPlaying{
		notifier: notifier,
		logger:   logger.With("component", "notify"),
		pending:  make(chan string, 1),
	}
	go p.run(ctx)
	return p
}

// SetTitle queues title for display. Failures are logged; notifications
// are best effort.
func (p *NowPlaying) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if title == p.last {
		return
	}
	p.last = title

	for {
		select {
		case p.pending <- title:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

func (p *NowPlaying) run(ctx context.Context) {
	var lastID uint32
	for {
		select {
		case <-ctx.Done():
			return
		case title := <-p.pending:
			callCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
			id, err := p.notifier.Notify(callCtx, Notification{
				Title:      "Now playing",
				Body:       title,
				Timeout:    nowPlayingTimeout,
				ReplacesID: lastID,
				Urgency:    UrgencyLow,
			})
			cancel()
			if err != nil {
				p.logger.Debug("notification failed", "err", err)
				continue
			}
			lastID = id
		}
	}
}
