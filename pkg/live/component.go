package live

import "github.com/liveroom-dev/liveroom/pkg/markup"

// Component is a server-side UI component.
//
// Mount runs exactly once, on the session's dispatch goroutine, before the
// first render; it initializes state and registers action handlers via
// ctx.HandleFunc. Render must be a pure function of the component's current
// state: same state, same tree.
type Component interface {
	Mount(ctx *Ctx) error
	Render() *markup.Node
}

// Restorable is an optional interface for components that can snapshot and
// restore their state. When implemented, the dispatcher restores the
// pre-action state after a handler error or panic, so failed actions never
// commit partial mutations. Components that skip it are responsible for
// leaving state untouched on failure themselves.
type Restorable interface {
	SnapshotState() any
	RestoreState(state any)
}

// Args are the decoded arguments of an action event.
type Args map[string]any

// String returns the string value for key, or "" if absent or another type.
func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the int value for key. JSON numbers decode as float64, so
// numeric conversions are handled here.
func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Int64 returns the int64 value for key.
func (a Args) Int64(key string) int64 {
	switch v := a[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Bool returns the bool value for key.
func (a Args) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

// HandlerFunc is an action handler. It runs on the session's dispatch
// goroutine and may freely mutate component state. Returning an error
// rejects the action: state is rolled back (for Restorable components) and
// the triggering connection receives an error notice.
type HandlerFunc func(ctx *Ctx) error

// Middleware wraps a HandlerFunc around every dispatched action.
type Middleware func(next HandlerFunc) HandlerFunc
