package playback

import (
	"errors"
	"fmt"
	"testing"
	"testing/synctest"

	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/playlist"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{State: State{SelectedID: "av1", LoopMode: playlist.LoopNone}})
		sub.sendFailure(Failure{Op: errmsg.OpAdd, Input: "x", Err: errors.New("boom")})

		e := <-sub.StateChanged
		if e.State.SelectedID != "av1" || e.State.LoopMode != playlist.LoopNone {
			t.Errorf("StateChanged = %+v", e.State)
		}

		f := <-sub.Failed
		if f.Message() != "Failed to add 'x': boom" {
			t.Errorf("Failed.Message() = %q", f.Message())
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsOldestWhenFull(t *testing.T) {
	sub := newSubscription()

	total := eventBufferSize + 5
	for i := range total {
		sub.sendState(StateChange{State: State{SelectedID: fmt.Sprintf("av%d", i)}})
	}

	var got []string
	for {
		select {
		case e := <-sub.StateChanged:
			got = append(got, e.State.SelectedID)
			continue
		default:
		}
		break
	}

	if len(got) != eventBufferSize {
		t.Fatalf("received %d events, want %d (buffer size)", len(got), eventBufferSize)
	}
	if want := fmt.Sprintf("av%d", total-1); got[len(got)-1] != want {
		t.Errorf("last event = %q, want the newest %q", got[len(got)-1], want)
	}
	if want := fmt.Sprintf("av%d", total-eventBufferSize); got[0] != want {
		t.Errorf("first event = %q, want %q", got[0], want)
	}
}
