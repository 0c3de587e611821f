package playback

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/resolver"
)

// recorder collects dispatched intents.
type recorder struct {
	mu      sync.Mutex
	intents []Intent
}

func (r *recorder) dispatch(in Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, in)
}

func (r *recorder) all() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Intent(nil), r.intents...)
}

func (r *recorder) count(match func(Intent) bool) int {
	n := 0
	for _, in := range r.all() {
		if match(in) {
			n++
		}
	}
	return n
}

func isRetry(in Intent) bool {
	_, ok := in.(Retry)
	return ok
}

func boundBinder(opts BinderOptions) (*Binder, *player.Mock) {
	b := NewBinder(opts)
	out := player.NewMock()
	b.Bind(out)
	return b, out
}

func TestBinder_ApplyResolution(t *testing.T) {
	var title string
	b, out := boundBinder(BinderOptions{Title: player.TitleFunc(func(s string) { title = s })})

	b.ApplyResolution(&resolver.Result{CanonicalID: "av1", Title: "Song", AudioURL: "https://cdn/a.m4a"})

	if out.Source() != "https://cdn/a.m4a" {
		t.Errorf("Source() = %q", out.Source())
	}
	if title != "Song - BILI MUSIC" {
		t.Errorf("title = %q, want %q", title, "Song - BILI MUSIC")
	}
}

func TestBinder_ApplyResolution_Unbound(t *testing.T) {
	var title string
	b := NewBinder(BinderOptions{Title: player.TitleFunc(func(s string) { title = s })})

	b.ApplyResolution(&resolver.Result{Title: "Song", AudioURL: "u"})

	if title != "Song - BILI MUSIC" {
		t.Errorf("title = %q", title)
	}
	if b.Bound() {
		t.Error("Bound() = true, want false")
	}
}

func TestBinder_SyncListeners_SingleInstance(t *testing.T) {
	b, out := boundBinder(BinderOptions{})
	rec := &recorder{}
	st := State{SelectedID: "avA", Playlist: entries("avA"), LoopMode: playlist.LoopList}

	for range 3 {
		b.SyncListeners(st, rec.dispatch)
	}

	if out.EndedListeners() != 1 || out.ErrorListeners() != 1 {
		t.Errorf("listeners = %d ended / %d error, want 1/1", out.EndedListeners(), out.ErrorListeners())
	}

	out.SimulateEnded()
	if got := rec.all(); len(got) != 1 || got[0] != (Ended{}) {
		t.Errorf("dispatched %v, want [Ended]", got)
	}
}

func TestBinder_SyncListeners_LoopFlag(t *testing.T) {
	tests := []struct {
		mode playlist.LoopMode
		want bool
	}{
		{playlist.LoopList, false},
		{playlist.LoopSingle, true},
		{playlist.LoopNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			b, out := boundBinder(BinderOptions{})
			b.SyncListeners(State{LoopMode: tt.mode}, func(Intent) {})
			if out.Loop() != tt.want {
				t.Errorf("Loop() = %v, want %v", out.Loop(), tt.want)
			}
		})
	}
}

func TestBinder_Bind_DetachesPreviousOutput(t *testing.T) {
	b, first := boundBinder(BinderOptions{})
	b.SyncListeners(State{}, func(Intent) {})

	second := player.NewMock()
	b.Bind(second)

	if first.EndedListeners() != 0 || first.ErrorListeners() != 0 {
		t.Error("listeners left on the previous output")
	}

	b.Bind(second)
	b.SyncListeners(State{}, func(Intent) {})
	b.Bind(second)
	if second.EndedListeners() != 1 {
		t.Error("rebinding the same output must keep its listeners")
	}
}

func TestBinder_ErrorSchedulesRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, out := boundBinder(BinderOptions{})
		rec := &recorder{}
		b.SyncListeners(State{SelectedID: "avA"}, rec.dispatch)

		out.SimulateError(errors.New("network"))
		time.Sleep(999 * time.Millisecond)
		synctest.Wait()
		if n := rec.count(isRetry); n != 0 {
			t.Fatalf("retried after %d early", n)
		}

		time.Sleep(time.Millisecond)
		synctest.Wait()
		if n := rec.count(isRetry); n != 1 {
			t.Errorf("retries = %d, want 1", n)
		}
		if b.RetryPending() {
			t.Error("RetryPending() = true after the timer fired")
		}
	})
}

func TestBinder_AtMostOnePendingRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, out := boundBinder(BinderOptions{})
		rec := &recorder{}
		b.SyncListeners(State{SelectedID: "avA"}, rec.dispatch)

		out.SimulateError(errors.New("1"))
		time.Sleep(500 * time.Millisecond)
		out.SimulateError(errors.New("2"))
		time.Sleep(2 * time.Second)
		synctest.Wait()

		if n := rec.count(isRetry); n != 1 {
			t.Errorf("retries = %d, want 1", n)
		}
	})
}

func TestBinder_SyncCancelsPendingRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, out := boundBinder(BinderOptions{})
		rec := &recorder{}
		b.SyncListeners(State{SelectedID: "avA"}, rec.dispatch)

		out.SimulateError(errors.New("network"))
		if !b.RetryPending() {
			t.Fatal("RetryPending() = false after error")
		}
		b.SyncListeners(State{SelectedID: "avB"}, rec.dispatch)

		time.Sleep(2 * time.Second)
		synctest.Wait()

		if n := rec.count(isRetry); n != 0 {
			t.Errorf("retries = %d, want 0", n)
		}
	})
}

func TestBinder_MaxRetries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := NewBinder(BinderOptions{MaxRetries: 2, RetryDelay: 100 * time.Millisecond})
		rec := &recorder{}
		boom := errors.New("403")

		for range 3 {
			b.ScheduleRetry("avA", boom, rec.dispatch)
			time.Sleep(time.Second)
			synctest.Wait()
		}

		got := rec.all()
		if len(got) != 3 {
			t.Fatalf("dispatched %v, want 2 retries then exhaustion", got)
		}
		ex, ok := got[2].(retryExhausted)
		if !ok || ex.id != "avA" || !errors.Is(ex.err, boom) {
			t.Errorf("last dispatch = %#v, want retryExhausted", got[2])
		}
	})
}

func TestBinder_RetryBudgetResetsOnNewSelection(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := NewBinder(BinderOptions{MaxRetries: 1, RetryDelay: 100 * time.Millisecond})
		rec := &recorder{}
		boom := errors.New("403")

		b.ScheduleRetry("avA", boom, rec.dispatch)
		time.Sleep(time.Second)
		b.ScheduleRetry("avB", boom, rec.dispatch)
		time.Sleep(time.Second)
		synctest.Wait()

		if n := rec.count(isRetry); n != 2 {
			t.Errorf("retries = %d, want 2", n)
		}
	})
}

func TestBinder_EndedResetsRetryBudget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, out := boundBinder(BinderOptions{MaxRetries: 1, RetryDelay: 100 * time.Millisecond})
		rec := &recorder{}
		b.SyncListeners(State{SelectedID: "avA"}, rec.dispatch)

		out.SimulateError(errors.New("1"))
		time.Sleep(time.Second)
		out.SimulateEnded()
		out.SimulateError(errors.New("2"))
		time.Sleep(time.Second)
		synctest.Wait()

		if n := rec.count(isRetry); n != 2 {
			t.Errorf("retries = %d, want 2", n)
		}
	})
}

func TestNextAfterEnd(t *testing.T) {
	tests := []struct {
		name     string
		playlist []playlist.Entry
		selected string
		mode     playlist.LoopMode
		want     string
		wantOK   bool
	}{
		{"middle advances", entries("avA", "avB", "avC"), "avB", playlist.LoopList, "avC", true},
		{"last wraps to first", entries("avA", "avB", "avC"), "avC", playlist.LoopList, "avA", true},
		{"single entry replays", entries("avA"), "avA", playlist.LoopList, "avA", true},
		{"unselected starts at first", entries("avA", "avB"), Unselected, playlist.LoopList, "avA", true},
		{"empty playlist", nil, "avA", playlist.LoopList, "", false},
		{"none stops", entries("avA", "avB"), "avA", playlist.LoopNone, "", false},
		{"single is native", entries("avA", "avB"), "avA", playlist.LoopSingle, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextAfterEnd(State{SelectedID: tt.selected, Playlist: tt.playlist, LoopMode: tt.mode})
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextAfterEnd() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
