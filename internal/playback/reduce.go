package playback

import (
	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/resolver"
)

// model is the actor-owned state: the public State plus the generation
// tokens that tell current resolves from superseded ones. gen orders user
// resolves; retryGen orders retries. A user resolve supersedes a pending
// retry, never the reverse.
type model struct {
	state    State
	gen      uint64
	retryGen uint64
}

// effect is a side effect requested by the reducer and run by the actor
// in order. A failing effect skips the rest of its transition.
type effect interface{ isEffect() }

type (
	// effResolve starts an async resolve of input.
	effResolve struct {
		kind  resolveKind
		input string
		gen   uint64
	}
	// effApply points the output at a resolved track.
	effApply struct{ res *resolver.Result }
	// effPersist saves the playlist and loop mode.
	effPersist struct{}
	// effSync re-registers output listeners for the current state.
	effSync struct{}
	// effBind looks up and binds an output.
	effBind struct{ target string }
	// effNotify publishes the current state to subscribers.
	effNotify struct{}
	// effDispatch queues a follow-up intent ahead of external ones.
	effDispatch struct{ intent Intent }
	// effFail surfaces a failure to the user.
	effFail struct{ failure Failure }
	// effRetry schedules another retry of id.
	effRetry struct {
		id  string
		err error
	}
	// effWarn logs a rejected intent.
	effWarn struct {
		msg     string
		keyvals []any
	}
)

func (effResolve) isEffect() {}
func (effApply) isEffect() {}
func (effPersist) isEffect() {}
func (effSync) isEffect() {}
func (effBind) isEffect() {}
func (effNotify) isEffect() {}
func (effDispatch) isEffect() {}
func (effFail) isEffect() {}
func (effRetry) isEffect() {}
func (effWarn) isEffect() {}

// reduce applies in to m. It performs no I/O; everything observable is
// returned as effects.
func reduce(m model, in Intent) (model, []effect) {
	m.state = m.state.Clone()

	switch in := in.(type) {
	case Add:
		m.gen++
		m.retryGen++
		return m, []effect{effResolve{kind: resolveAdd, input: in.Input, gen: m.gen}}

	case PlayAndSelect:
		m.gen++
		m.retryGen++
		return m, []effect{effResolve{kind: resolvePlay, input: in.Input, gen: m.gen}}

	case Retry:
		if m.state.SelectedID == Unselected {
			return m, nil
		}
		m.retryGen++
		return m, []effect{effResolve{kind: resolveRetry, input: m.state.SelectedID, gen: m.retryGen}}

	case resolved:
		return reduceResolved(m, in)

	case resolveFailed:
		switch in.kind {
		case resolveAdd:
			return m, []effect{effFail{Failure{Op: errmsg.OpAdd, Input: in.input, Err: in.err}}}
		case resolvePlay:
			return m, []effect{effFail{Failure{Op: errmsg.OpPlay, Input: in.input, Err: in.err}}}
		case resolveRetry:
			if in.gen != m.retryGen {
				return m, nil
			}
			return m, []effect{effRetry{id: in.input, err: in.err}}
		}
		return m, nil

	case retryExhausted:
		if in.id != m.state.SelectedID {
			return m, nil
		}
		return m, []effect{effFail{Failure{Op: errmsg.OpPlayback, Input: in.id, Err: in.err}}}

	case Remove:
		p := playlist.From(m.state.Playlist)
		if !p.RemoveID(in.ID) {
			return m, []effect{effPersist{}}
		}
		m.state.Playlist = p.Entries()
		return m, []effect{effPersist{}, effNotify{}}

	case Select:
		m.state.SelectedID = in.ID
		return m, []effect{effSync{}, effNotify{}}

	case SetLoopMode:
		m.state.LoopMode = in.Mode
		return m, []effect{effSync{}, effPersist{}, effNotify{}}

	case Reorder:
		p := playlist.From(m.state.Playlist)
		if !p.Move(in.From, in.To) {
			return m, []effect{effWarn{"reorder out of range", []any{"from", in.From, "to", in.To, "len", p.Len()}}}
		}
		m.state.Playlist = p.Entries()
		return m, []effect{effSync{}, effPersist{}, effNotify{}}

	case InitOutput:
		return m, []effect{effBind{target: in.Target}, effSync{}}

	case Ended:
		next, ok := NextAfterEnd(m.state)
		if !ok {
			return m, nil
		}
		return m, []effect{effDispatch{PlayAndSelect{Input: next}}}
	}

	return m, nil
}

func reduceResolved(m model, in resolved) (model, []effect) {
	current := in.gen == m.gen
	id := in.res.CanonicalID

	switch in.kind {
	case resolveAdd:
		p := playlist.From(m.state.Playlist)
		p.Put(playlist.Entry{ID: id, Name: in.res.Title, Pic: in.res.Pic})
		m.state.Playlist = p.Entries()
		if !current {
			// A newer resolve owns the output; keep the entry only.
			return m, []effect{effPersist{}, effNotify{}}
		}
		return m, []effect{effApply{in.res}, effPersist{}, effNotify{}, effDispatch{Select{ID: id}}}

	case resolvePlay:
		if !current {
			return m, nil
		}
		return m, []effect{effApply{in.res}, effDispatch{Select{ID: id}}}

	case resolveRetry:
		if in.gen != m.retryGen || id != m.state.SelectedID {
			return m, nil
		}
		return m, []effect{effApply{in.res}}
	}
	return m, nil
}
