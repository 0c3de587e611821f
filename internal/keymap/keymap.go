// Package keymap defines the TUI key bindings and resolves keys to actions.
package keymap

// Action is something a key can trigger.
type Action string

const (
	ActionQuit        Action = "quit"
	ActionSwitchFocus Action = "switch_focus"

	// Input field.
	ActionAdd  Action = "add"
	ActionPlay Action = "play"

	// Playlist panel.
	ActionMoveUp       Action = "move_up"
	ActionMoveDown     Action = "move_down"
	ActionPlayEntry    Action = "play_entry"
	ActionRemove       Action = "remove"
	ActionMoveItemUp   Action = "move_item_up"
	ActionMoveItemDown Action = "move_item_down"
	ActionCycleLoop    Action = "cycle_loop"
)

// Contexts a binding applies in.
const (
	ContextGlobal   = "global"
	ContextInput    = "input"
	ContextPlaylist = "playlist"
)

// Binding ties keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string
}

// All lists every binding, in help order.
var All = []Binding{
	{ActionQuit, []string{"ctrl+c"}, "quit", ContextGlobal},
	{ActionSwitchFocus, []string{"tab"}, "switch focus", ContextGlobal},

	{ActionAdd, []string{"enter"}, "add & play", ContextInput},
	{ActionPlay, []string{"ctrl+p"}, "play only", ContextInput},

	{ActionQuit, []string{"q"}, "quit", ContextPlaylist},
	{ActionMoveDown, []string{"j", "down"}, "down", ContextPlaylist},
	{ActionMoveUp, []string{"k", "up"}, "up", ContextPlaylist},
	{ActionPlayEntry, []string{"enter"}, "play", ContextPlaylist},
	{ActionRemove, []string{"d", "delete"}, "remove", ContextPlaylist},
	{ActionMoveItemDown, []string{"J", "shift+down"}, "move down", ContextPlaylist},
	{ActionMoveItemUp, []string{"K", "shift+up"}, "move up", ContextPlaylist},
	{ActionCycleLoop, []string{"l"}, "loop mode", ContextPlaylist},
}

// ByContext returns the bindings of one context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, b := range All {
		if b.Context == context {
			result = append(result, b)
		}
	}
	return result
}

// Resolver maps keys to actions for one focus context. Global bindings
// apply everywhere; context bindings win on conflict.
type Resolver struct {
	bindings map[string]Action
}

// NewResolver builds a resolver for context.
func NewResolver(context string) *Resolver {
	r := &Resolver{bindings: make(map[string]Action)}
	for _, ctx := range []string{ContextGlobal, context} {
		for _, b := range ByContext(ctx) {
			for _, k := range b.Keys {
				r.bindings[k] = b.Action
			}
		}
	}
	return r
}

// Resolve returns the action bound to key, or "" when none is.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}
