package hotkey

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"gridkey/keyid"
	"gridkey/log"
)

type handler struct {
	fire         func()
	pressRelease func(down bool)
}

type table map[keyid.ID]handler

// Stats are cumulative counters since the interceptor was created.
type Stats struct {
	Seen       uint64
	Swallowed  uint64
	Passed     uint64
	Dispatched uint64
	Replaced   uint64
	Dropped    uint64 // events that arrived while stopped
}

// Interceptor owns one capture session. The handler table is copy-on-write:
// writers build a new map under mu and publish it atomically, so the event
// callback reads it without locking.
type Interceptor struct {
	tap  Tap
	auth Authorizer
	exec Executor

	mu    sync.Mutex // serializes writers and Start/Stop
	table atomic.Pointer[table]

	// gate orders the active flag against posting so that no work is posted
	// once Stop has returned. Readers hold it only for a lookup and a Post.
	gate   sync.RWMutex
	active bool

	seen, swallowed, passed, dispatched, replaced, dropped atomic.Uint64
}

func NewInterceptor(tap Tap, auth Authorizer, exec Executor) *Interceptor {
	if auth == nil {
		auth = StaticAuthorizer{Allow: true}
	}
	in := &Interceptor{tap: tap, auth: auth, exec: exec}
	empty := table{}
	in.table.Store(&empty)
	return in
}

// Start installs the capture point. It is a no-op when already running.
// A missing authorization triggers a non-intrusive request and returns an
// error wrapping ErrNotAuthorized; an install failure wraps ErrTapDenied.
// Nothing stays installed after a failure.
func (in *Interceptor) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.Running() {
		return nil
	}

	if !in.auth.Granted() {
		if err := in.auth.Request(); err != nil {
			log.Warnf("authorization request failed: %v", err)
		}
		err := fmt.Errorf("start monitoring: %w", ErrNotAuthorized)
		log.MonitoringFailed(err)
		return err
	}

	ids := in.ids()
	if w, ok := in.tap.(Watcher); ok {
		if err := w.Watch(ids); err != nil {
			err = fmt.Errorf("start monitoring: %w: %v", ErrTapDenied, err)
			log.MonitoringFailed(err)
			return err
		}
	}

	in.setActive(true)
	if err := in.tap.Install(in.handle); err != nil {
		in.setActive(false)
		err = fmt.Errorf("start monitoring: %w: %v", ErrTapDenied, err)
		log.MonitoringFailed(err)
		return err
	}

	log.MonitoringStarted(in.tap.Name(), len(ids))
	return nil
}

// Stop removes the capture point. It is safe to call repeatedly and while
// previously posted handlers are still running; they finish, but nothing new
// is posted after Stop returns.
func (in *Interceptor) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.Running() {
		return nil
	}
	in.setActive(false)

	s := in.Stats()
	log.MonitoringStopped(log.Stats(s))

	if err := in.tap.Remove(); err != nil {
		return fmt.Errorf("stop monitoring: %w", err)
	}
	return nil
}

func (in *Interceptor) Running() bool {
	in.gate.RLock()
	defer in.gate.RUnlock()
	return in.active
}

func (in *Interceptor) setActive(v bool) {
	in.gate.Lock()
	in.active = v
	in.gate.Unlock()
}

// Register binds a fire-once handler, invoked on key-down only. It reports
// whether an existing handler for the same identity was replaced.
func (in *Interceptor) Register(id keyid.ID, fn func()) bool {
	log.HotkeyRegistered(id.String(), false)
	return in.put(id, handler{fire: fn})
}

// RegisterPressRelease binds a handler that receives both key-down (true)
// and key-up (false).
func (in *Interceptor) RegisterPressRelease(id keyid.ID, fn func(down bool)) bool {
	log.HotkeyRegistered(id.String(), true)
	return in.put(id, handler{pressRelease: fn})
}

// Unregister removes the handler for id and reports whether one existed.
func (in *Interceptor) Unregister(id keyid.ID) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	cur := *in.table.Load()
	if _, ok := cur[id]; !ok {
		return false
	}
	next := make(table, len(cur))
	for k, v := range cur {
		if k != id {
			next[k] = v
		}
	}
	in.table.Store(&next)
	in.syncWatched()
	return true
}

func (in *Interceptor) ClearAll() {
	in.mu.Lock()
	defer in.mu.Unlock()

	empty := table{}
	in.table.Store(&empty)
	in.syncWatched()
}

// Registered returns the bound identities ordered by key code, then modifiers.
func (in *Interceptor) Registered() []keyid.ID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ids()
}

func (in *Interceptor) Stats() Stats {
	return Stats{
		Seen:       in.seen.Load(),
		Swallowed:  in.swallowed.Load(),
		Passed:     in.passed.Load(),
		Dispatched: in.dispatched.Load(),
		Replaced:   in.replaced.Load(),
		Dropped:    in.dropped.Load(),
	}
}

func (in *Interceptor) put(id keyid.ID, h handler) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	cur := *in.table.Load()
	_, replaced := cur[id]
	next := make(table, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[id] = h
	in.table.Store(&next)

	if replaced {
		in.replaced.Add(1)
		log.HotkeyReplaced(id.String())
	} else {
		in.syncWatched()
	}
	return replaced
}

// ids must be called with mu held.
func (in *Interceptor) ids() []keyid.ID {
	cur := *in.table.Load()
	ids := make([]keyid.ID, 0, len(cur))
	for id := range cur {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b keyid.ID) int {
		ha, hb := a.Hash(), b.Hash()
		switch {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		}
		return 0
	})
	return ids
}

// syncWatched must be called with mu held.
func (in *Interceptor) syncWatched() {
	w, ok := in.tap.(Watcher)
	if !ok || !in.Running() {
		return
	}
	if err := w.Watch(in.ids()); err != nil {
		log.Warnf("updating watched hotkeys on %s: %v", in.tap.Name(), err)
	}
}

// handle is the per-event callback handed to the tap.
func (in *Interceptor) handle(ev Event) Decision {
	in.seen.Add(1)

	if ev.Kind != KindDown && ev.Kind != KindUp {
		in.passed.Add(1)
		return Pass
	}

	in.gate.RLock()
	defer in.gate.RUnlock()

	if !in.active {
		in.dropped.Add(1)
		return Pass
	}

	h, ok := (*in.table.Load())[keyid.New(ev.Code, ev.Flags)]
	if !ok {
		in.passed.Add(1)
		return Pass
	}

	down := ev.Kind == KindDown
	switch {
	case h.pressRelease != nil:
		fn := h.pressRelease
		in.exec.Post(func() { fn(down) })
	case down:
		in.exec.Post(h.fire)
	default:
		// fire-once identities only trigger on key-down
		in.passed.Add(1)
		return Pass
	}

	in.dispatched.Add(1)
	in.swallowed.Add(1)
	return Swallow
}
