package keymap

import "testing"

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		context string
		key     string
		want    Action
	}{
		{ContextInput, "ctrl+c", ActionQuit},
		{ContextInput, "tab", ActionSwitchFocus},
		{ContextInput, "enter", ActionAdd},
		{ContextInput, "ctrl+p", ActionPlay},
		{ContextInput, "q", ""},
		{ContextInput, "j", ""},
		{ContextPlaylist, "q", ActionQuit},
		{ContextPlaylist, "enter", ActionPlayEntry},
		{ContextPlaylist, "J", ActionMoveItemDown},
		{ContextPlaylist, "shift+up", ActionMoveItemUp},
		{ContextPlaylist, "l", ActionCycleLoop},
		{ContextPlaylist, "tab", ActionSwitchFocus},
		{ContextPlaylist, "x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.context+"/"+tt.key, func(t *testing.T) {
			if got := NewResolver(tt.context).Resolve(tt.key); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestByContext(t *testing.T) {
	for _, ctx := range []string{ContextGlobal, ContextInput, ContextPlaylist} {
		bs := ByContext(ctx)
		if len(bs) == 0 {
			t.Errorf("ByContext(%q) is empty", ctx)
		}
		for _, b := range bs {
			if b.Context != ctx {
				t.Errorf("ByContext(%q) returned %q binding", ctx, b.Context)
			}
			if len(b.Keys) == 0 || b.Description == "" {
				t.Errorf("incomplete binding %+v", b)
			}
		}
	}
}
