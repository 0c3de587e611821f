package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"testing/synctest"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bilimusic/internal/avbv"
	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/resolver"
	"github.com/llehouerou/bilimusic/internal/state"
	"github.com/llehouerou/bilimusic/internal/ui/action"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// fakeController records dispatched intents.
type fakeController struct {
	state      playback.State
	dispatched []playback.Intent
}

func (f *fakeController) Dispatch(in playback.Intent) { f.dispatched = append(f.dispatched, in) }
func (f *fakeController) State() playback.State { return f.state }
func (f *fakeController) Subscribe() *playback.Subscription { return nil }

func (f *fakeController) last(t *testing.T) playback.Intent {
	t.Helper()
	if len(f.dispatched) == 0 {
		t.Fatal("nothing dispatched")
	}
	return f.dispatched[len(f.dispatched)-1]
}

func abcState() playback.State {
	return playback.State{
		SelectedID: "av2",
		Playlist: []playlist.Entry{
			{ID: "av1", Name: "Alpha"},
			{ID: "av2", Name: "Bravo"},
			{ID: "av3", Name: "Charlie"},
		},
		LoopMode: playlist.LoopList,
	}
}

func newModel(st playback.State) (Model, *fakeController) {
	fc := &fakeController{state: st}
	m := New(Options{Controller: fc})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return next.(Model), fc
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// typeText enters text into the focused input, ignoring blink commands.
func typeText(m Model, text string) Model {
	m, _ = update(m, keyMsg(text))
	return m
}

// act presses k, expects a component action and feeds it back.
func act(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := update(m, keyMsg(k))
	if cmd == nil {
		t.Fatalf("key %q produced no command", k)
	}
	msg, ok := cmd().(action.Msg)
	if !ok {
		t.Fatalf("key %q did not produce an action", k)
	}
	m, _ = update(m, msg)
	return m
}

func TestNew_ShowsInitialState(t *testing.T) {
	m, _ := newModel(abcState())
	out := stripANSI(m.View())
	for _, want := range []string{"BILI MUSIC", "Alpha", "▶ Bravo", "Charlie", "loop: LIST", "Playlist (2/3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if m.Focus() != FocusInput {
		t.Errorf("initial focus = %v, want input", m.Focus())
	}
}

func TestInput_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want playback.Intent
	}{
		{"enter adds", "enter", playback.Add{Input: "BV17x411w7KC"}},
		{"ctrl+p plays without adding", "ctrl+p", playback.PlayAndSelect{Input: "BV17x411w7KC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fc := newModel(abcState())
			m = typeText(m, "BV17x411w7KC")
			act(t, m, tt.key)
			if got := fc.last(t); got != tt.want {
				t.Errorf("dispatched %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPlaylist_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want playback.Intent
	}{
		{"enter plays entry", []string{"enter"}, playback.PlayAndSelect{Input: "av1"}},
		{"d removes entry", []string{"j", "d"}, playback.Remove{ID: "av2"}},
		{"J reorders down", []string{"J"}, playback.Reorder{From: 0, To: 1}},
		{"K reorders up", []string{"G", "K"}, playback.Reorder{From: 2, To: 1}},
		{"l cycles loop", []string{"l"}, playback.SetLoopMode{Mode: playlist.LoopSingle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fc := newModel(abcState())
			m, _ = update(m, keyMsg("tab"))
			for _, k := range tt.keys[:len(tt.keys)-1] {
				m, _ = update(m, keyMsg(k))
			}
			act(t, m, tt.keys[len(tt.keys)-1])
			if got := fc.last(t); got != tt.want {
				t.Errorf("dispatched %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFocus_Toggle(t *testing.T) {
	m, _ := newModel(abcState())
	m, _ = update(m, keyMsg("tab"))
	if m.Focus() != FocusPlaylist {
		t.Fatalf("focus = %v, want playlist", m.Focus())
	}
	m, _ = update(m, keyMsg("tab"))
	if m.Focus() != FocusInput {
		t.Fatalf("focus = %v, want input", m.Focus())
	}
}

func TestQuit(t *testing.T) {
	isQuit := func(cmd tea.Cmd) bool {
		if cmd == nil {
			return false
		}
		_, ok := cmd().(tea.QuitMsg)
		return ok
	}

	m, _ := newModel(abcState())
	if typed := typeText(m, "q"); typed.input.Value() != "q" {
		t.Error("q in the input field should type, not quit")
	}
	if _, cmd := update(m, keyMsg("ctrl+c")); !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
	m, _ = update(m, keyMsg("tab"))
	if _, cmd := update(m, keyMsg("q")); !isQuit(cmd) {
		t.Error("q in the playlist should quit")
	}
	if _, cmd := update(m, ControllerClosedMsg{}); !isQuit(cmd) {
		t.Error("controller shutdown should quit")
	}
}

func TestFailure_ShownUntilNextSubmit(t *testing.T) {
	m, _ := newModel(abcState())
	f := playback.Failure{Op: errmsg.OpAdd, Input: "xyz", Err: avbv.ErrInvalidID}
	m, _ = update(m, FailedMsg{Failure: f})

	want := "Failed to add 'xyz': invalid video id"
	if m.Status() != want {
		t.Errorf("Status() = %q, want %q", m.Status(), want)
	}
	if !strings.Contains(stripANSI(m.View()), want) {
		t.Errorf("view missing failure:\n%s", stripANSI(m.View()))
	}

	m = typeText(m, "av1")
	m = act(t, m, "enter")
	if m.Status() != "" {
		t.Errorf("Status() after submit = %q, want empty", m.Status())
	}
}

func TestStateChanged_UpdatesPanel(t *testing.T) {
	m, _ := newModel(abcState())
	st := abcState()
	st.Playlist = st.Playlist[:1]
	st.SelectedID = "av1"
	st.LoopMode = playlist.LoopNone

	m, _ = update(m, StateChangedMsg{State: st})
	out := stripANSI(m.View())
	if strings.Contains(out, "Charlie") {
		t.Errorf("removed entry still shown:\n%s", out)
	}
	for _, want := range []string{"▶ Alpha", "loop: NONE", "Playlist (1/1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestTitleMsg_SetsWindowTitle(t *testing.T) {
	m, _ := newModel(abcState())
	if _, cmd := update(m, TitleMsg{Title: "Bravo - BILI MUSIC"}); cmd == nil {
		t.Error("TitleMsg should produce a command")
	}
}

func TestTitleSink_KeepsLatest(t *testing.T) {
	s := NewTitleSink()
	s.SetTitle("first")
	s.SetTitle("second")

	msg := WatchTitle(s)()
	if got, ok := msg.(TitleMsg); !ok || got.Title != "second" {
		t.Errorf("got %#v, want TitleMsg{second}", msg)
	}
}

func TestView_ZeroSize(t *testing.T) {
	m := New(Options{Controller: &fakeController{}})
	if m.View() != "" {
		t.Error("view before the first resize should be empty")
	}
}

// tableResolver resolves a fixed set of inputs.
type tableResolver map[string]*resolver.Result

func (r tableResolver) ResolveInput(_ context.Context, input string) (*resolver.Result, error) {
	if res, ok := r[input]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %q", avbv.ErrInvalidID, input)
}

// next runs the event watcher until a message of type T arrives.
func next[T tea.Msg](t *testing.T, m Model) (Model, T) {
	t.Helper()
	for range 10 {
		msg := WatchEvents(m.sub)()
		m, _ = update(m, msg)
		if v, ok := msg.(T); ok {
			return m, v
		}
	}
	var zero T
	t.Fatalf("no %T received", zero)
	return m, zero
}

func TestWithController(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		store := state.NewMock()
		out := player.NewMock()
		reg := player.NewRegistry()
		reg.Register("speaker", out)
		titles := NewTitleSink()

		c := playback.New(playback.Options{
			Resolver: tableResolver{
				"BV17x411w7KC": {CanonicalID: "av170001", Title: "Song", AudioURL: "https://cdn/a.m4a"},
			},
			Store:   store,
			Outputs: reg,
			Binder:  playback.NewBinder(playback.BinderOptions{Title: titles}),
		})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Run(ctx) }()
		if err := c.Do(ctx, playback.InitOutput{Target: "speaker"}); err != nil {
			t.Fatalf("InitOutput: %v", err)
		}

		m := New(Options{Controller: c, Titles: titles})
		m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 20})

		m = act(t, typeText(m, "BV17x411w7KC"), "enter")
		for !strings.Contains(stripANSI(m.View()), "▶ Song") {
			m, _ = next[StateChangedMsg](t, m)
		}
		if out.Source() != "https://cdn/a.m4a" {
			t.Errorf("output source = %q", out.Source())
		}
		if msg, ok := WatchTitle(titles)().(TitleMsg); !ok || msg.Title != "Song - BILI MUSIC" {
			t.Errorf("title = %#v", msg)
		}

		m = act(t, typeText(m, "nonsense"), "enter")
		m, f := next[FailedMsg](t, m)
		if !errors.Is(f.Failure.Err, avbv.ErrInvalidID) {
			t.Errorf("failure err = %v", f.Failure.Err)
		}
		if !strings.Contains(m.Status(), "Failed to add 'nonsense'") {
			t.Errorf("Status() = %q", m.Status())
		}

		_ = c.Close()
		_, _ = next[ControllerClosedMsg](t, m)
		synctest.Wait()
	})
}
