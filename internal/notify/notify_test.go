package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	sent   []Notification
	nextID uint32
	err    error
	hang   int // calls left that wait for their deadline
	errs   []error
}

func (r *recorder) Notify(ctx context.Context, n Notification) (uint32, error) {
	r.mu.Lock()
	block, err := r.hang > 0, r.err
	if block {
		r.hang--
	}
	r.mu.Unlock()

	if block {
		<-ctx.Done()
		err = ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, err)
		return 0, err
	}
	r.sent = append(r.sent, n)
	r.nextID++
	return r.nextID, nil
}

func (r *recorder) set(fn func(r *recorder)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *recorder) snapshot() ([]Notification, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...), append([]error(nil), r.errs...)
}

func TestNowPlaying_ReplacesPrevious(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec := &recorder{}
		np := NewNowPlaying(ctx, rec, nil)

		np.SetTitle("A - BILI MUSIC")
		synctest.Wait()
		np.SetTitle("B - BILI MUSIC")
		synctest.Wait()

		sent, _ := rec.snapshot()
		if len(sent) != 2 {
			t.Fatalf("sent %d notifications, want 2", len(sent))
		}
		if sent[0].ReplacesID != 0 {
			t.Errorf("first ReplacesID = %d, want 0", sent[0].ReplacesID)
		}
		if sent[1].ReplacesID != 1 {
			t.Errorf("second ReplacesID = %d, want 1", sent[1].ReplacesID)
		}
		if sent[1].Body != "B - BILI MUSIC" {
			t.Errorf("Body = %q", sent[1].Body)
		}
		if sent[1].Urgency != UrgencyLow {
			t.Errorf("Urgency = %d, want low", sent[1].Urgency)
		}
	})
}

func TestNowPlaying_SameTitleSentOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec := &recorder{}
		np := NewNowPlaying(ctx, rec, nil)

		// A retry re-applies the same title every second.
		for range 3 {
			np.SetTitle("A - BILI MUSIC")
			synctest.Wait()
		}

		if sent, _ := rec.snapshot(); len(sent) != 1 {
			t.Errorf("sent %d notifications, want 1", len(sent))
		}
	})
}

func TestNowPlaying_ErrorKeepsLastID(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec := &recorder{}
		np := NewNowPlaying(ctx, rec, nil)
		np.SetTitle("A")
		synctest.Wait()

		rec.set(func(r *recorder) { r.err = errors.New("no server") })
		np.SetTitle("B")
		synctest.Wait()

		rec.set(func(r *recorder) { r.err = nil })
		np.SetTitle("C")
		synctest.Wait()

		sent, _ := rec.snapshot()
		if got := sent[len(sent)-1].ReplacesID; got != 1 {
			t.Errorf("ReplacesID after failure = %d, want 1", got)
		}
	})
}

func TestNowPlaying_HungDaemonDoesNotBlockCaller(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec := &recorder{hang: 1}
		np := NewNowPlaying(ctx, rec, nil)

		np.SetTitle("A")
		synctest.Wait()
		np.SetTitle("B")
		np.SetTitle("C")

		time.Sleep(notifyTimeout + time.Millisecond)
		synctest.Wait()
		if _, errs := rec.snapshot(); len(errs) != 1 || !errors.Is(errs[0], context.DeadlineExceeded) {
			t.Fatalf("errs = %v, want one deadline exceeded", errs)
		}

		// Only the latest queued title is sent after the stuck call.
		sent, _ := rec.snapshot()
		if len(sent) != 1 || sent[0].Body != "C" {
			t.Errorf("sent = %+v, want only C", sent)
		}
	})
}

func TestStubNotifier(t *testing.T) {
	id, err := stubNotifier{}.Notify(context.Background(), Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("stub Notify = %d, %v", id, err)
	}
}
