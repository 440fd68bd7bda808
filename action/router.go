package action

import (
	"fmt"
	"sync/atomic"

	"gridkey/log"
)

// Arranger lays out the managed windows.
type Arranger interface {
	Grid(rows, cols int) error
	Cascade() error
	Stack() error
}

// Navigator moves focus between tables.
type Navigator interface {
	Next() error
	Previous() error
}

// Gesture drives the grid overlay.
type Gesture interface {
	Handle(down bool)
	Toggle()
}

// Router calls the collaborator operation behind each action. Collaborator
// errors are logged and never returned to the hotkey path.
type Router struct {
	catalog   Catalog
	arranger  Arranger
	navigator Navigator
	gesture   Gesture

	fired    atomic.Uint64
	observer atomic.Pointer[func(Action)]
}

func NewRouter(c Catalog, a Arranger, n Navigator, g Gesture) *Router {
	return &Router{catalog: c, arranger: a, navigator: n, gesture: g}
}

// OnFire sets a function called after every fired action.
func (r *Router) OnFire(fn func(Action)) {
	r.observer.Store(&fn)
}

// Catalog returns the routed catalog.
func (r *Router) Catalog() Catalog { return r.catalog }

// FireOnce returns the key-down handler for a.
func (r *Router) FireOnce(a Action) func() {
	return func() { r.run(a, true) }
}

// PressRelease returns the down/up handler for a.
func (r *Router) PressRelease(a Action) func(down bool) {
	return func(down bool) { r.run(a, down) }
}

// Fire triggers an action by ID outside the hotkey path, e.g. from a menu.
// Press/release actions receive a full press then release.
func (r *Router) Fire(id string) error {
	a, ok := r.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("fire %q: %w", id, ErrUnknownAction)
	}
	r.run(a, true)
	if a.Kind == PressRelease {
		r.run(a, false)
	}
	return nil
}

// Fired counts routed key-down triggers.
func (r *Router) Fired() uint64 { return r.fired.Load() }

func (r *Router) run(a Action, down bool) {
	var err error
	switch a.Op {
	case OpHoldOverlay:
		r.gesture.Handle(down)
	case OpToggleOverlay:
		r.gesture.Toggle()
	case OpGrid:
		err = r.arranger.Grid(a.Rows, a.Cols)
	case OpCascade:
		err = r.arranger.Cascade()
	case OpStack:
		err = r.arranger.Stack()
	case OpNextTable:
		err = r.navigator.Next()
	case OpPreviousTable:
		err = r.navigator.Previous()
	default:
		err = fmt.Errorf("no route for op %d", a.Op)
	}
	if err != nil {
		log.Errorf("action %s: %v", a.ID, err)
	}
	if !down {
		return
	}
	r.fired.Add(1)
	if fn := r.observer.Load(); fn != nil {
		(*fn)(a)
	}
}
