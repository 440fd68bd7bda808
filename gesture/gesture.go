// Package gesture turns press/release notifications of the overlay key into
// show/hide calls: hold to preview, release to dismiss, and an explicit toggle
// to pin the overlay open.
package gesture

import (
	"sync"
	"time"

	"gridkey/log"
)

type State int

const (
	Idle    State = iota
	Holding       // visible while the key is held
	Pinned        // visible until the next press or toggle
)

func (s State) String() string {
	switch s {
	case Holding:
		return "visible"
	case Pinned:
		return "pinned"
	}
	return "idle"
}

// Overlay is the collaborator that draws the grid preview.
type Overlay interface {
	HandleHoldStart()
	HandleHoldEnd()
	Toggle()
}

// VisibilityReporter is optionally implemented by an Overlay that can be
// dismissed by other means (e.g. its window closed by the user).
type VisibilityReporter interface {
	Visible() bool
}

// Dispatcher owns the gesture state. There is no timing threshold: only an
// explicit Toggle pins the overlay. Methods are meant to be called from the
// primary execution context; State and friends may be read from anywhere.
type Dispatcher struct {
	overlay Overlay
	now     func() time.Time

	mu        sync.Mutex
	state     State
	pressedAt time.Time
	stale     int
}

func New(overlay Overlay) *Dispatcher {
	return &Dispatcher{overlay: overlay, now: time.Now}
}

type effect int

const (
	none effect = iota
	show
	hide
	toggle
)

// Handle adapts the dispatcher to a press/release hotkey handler.
func (d *Dispatcher) Handle(down bool) {
	if down {
		d.Press()
	} else {
		d.Release()
	}
}

func (d *Dispatcher) Press() {
	visible := d.overlayVisible()

	d.transition("press", func() effect {
		switch d.state {
		case Idle:
			d.state = Holding
			d.pressedAt = d.now()
			return show
		case Pinned:
			if !visible {
				d.state = Holding
				d.pressedAt = d.now()
				return show
			}
			d.state = Idle
			d.pressedAt = time.Time{}
			return hide
		}
		// auto-repeat while held
		return none
	})
}

func (d *Dispatcher) Release() {
	d.transition("release", func() effect {
		switch d.state {
		case Holding:
			d.state = Idle
			d.pressedAt = time.Time{}
			return hide
		case Idle:
			d.stale++
		}
		return none
	})
}

// Toggle pins the overlay open, or closes a pinned overlay. A pinned overlay
// that was dismissed elsewhere is shown again and stays pinned.
func (d *Dispatcher) Toggle() {
	visible := d.overlayVisible()

	d.transition("toggle", func() effect {
		switch d.state {
		case Idle:
			d.state = Pinned
			return toggle
		case Holding:
			d.state = Pinned
			return none
		}
		if !visible {
			return toggle
		}
		d.state = Idle
		d.pressedAt = time.Time{}
		return toggle
	})
}

func (d *Dispatcher) overlayVisible() bool {
	if vr, ok := d.overlay.(VisibilityReporter); ok {
		return vr.Visible()
	}
	return true
}

// Reset hides the overlay if needed and returns to Idle, recovering from a
// press whose release never arrived.
func (d *Dispatcher) Reset() {
	d.transition("reset", func() effect {
		prev := d.state
		d.state = Idle
		d.pressedAt = time.Time{}
		if prev == Idle {
			return none
		}
		return hide
	})
}

func (d *Dispatcher) transition(trigger string, step func() effect) {
	d.mu.Lock()
	from := d.state
	eff := step()
	to := d.state
	d.mu.Unlock()

	if from != to {
		log.Gesture(from.String(), to.String(), trigger)
	}

	switch eff {
	case show:
		d.overlay.HandleHoldStart()
	case hide:
		d.overlay.HandleHoldEnd()
	case toggle:
		d.overlay.Toggle()
	}
}

func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dispatcher) Pinned() bool {
	return d.State() == Pinned
}

// HeldFor reports how long the current hold has lasted, or zero.
func (d *Dispatcher) HeldFor() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pressedAt.IsZero() {
		return 0
	}
	return d.now().Sub(d.pressedAt)
}

// StaleReleases counts releases that arrived with no press active.
func (d *Dispatcher) StaleReleases() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stale
}
