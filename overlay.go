package main

import "sync"

// gridOverlay is the preview overlay driven by the gesture dispatcher. It
// only tracks visibility and the preview shape; drawing is up to the sink.
type gridOverlay struct {
	sink EventSink

	mu      sync.Mutex
	visible bool
	pinned  bool
	rows    int
	cols    int
}

func newGridOverlay(sink EventSink, rows, cols int) *gridOverlay {
	return &gridOverlay{sink: sink, rows: rows, cols: cols}
}

func (o *gridOverlay) HandleHoldStart() { o.set(true, false) }
func (o *gridOverlay) HandleHoldEnd()   { o.set(false, false) }

func (o *gridOverlay) Toggle() {
	o.mu.Lock()
	show := !o.visible
	o.mu.Unlock()
	o.set(show, show)
}

func (o *gridOverlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Dismiss hides the overlay without going through the gesture, e.g. when the
// user closes the window.
func (o *gridOverlay) Dismiss() { o.set(false, false) }

// SetShape changes the previewed grid, redrawing it when visible.
func (o *gridOverlay) SetShape(rows, cols int) {
	o.mu.Lock()
	o.rows, o.cols = rows, cols
	visible, pinned := o.visible, o.pinned
	o.mu.Unlock()
	if visible {
		o.sink.OverlayShow(rows, cols, pinned)
	}
}

func (o *gridOverlay) Shape() (rows, cols int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rows, o.cols
}

func (o *gridOverlay) set(visible, pinned bool) {
	o.mu.Lock()
	o.visible, o.pinned = visible, pinned
	rows, cols := o.rows, o.cols
	o.mu.Unlock()

	if visible {
		o.sink.OverlayShow(rows, cols, pinned)
	} else {
		o.sink.OverlayHide()
	}
}
