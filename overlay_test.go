package main

import (
	"fmt"
	"slices"
	"testing"

	"gridkey/gesture"
)

// recordSink captures display events as strings.
type recordSink struct{ events []string }

func (r *recordSink) OverlayShow(rows, cols int, pinned bool) {
	r.events = append(r.events, fmt.Sprintf("show %dx%d pinned=%v", rows, cols, pinned))
}
func (r *recordSink) OverlayHide()            { r.events = append(r.events, "hide") }
func (r *recordSink) ActionFired(name string) { r.events = append(r.events, "fired "+name) }
func (r *recordSink) StatusLine(text string)  { r.events = append(r.events, "status "+text) }
func (r *recordSink) BindingsChanged()        { r.events = append(r.events, "bindings") }

func TestOverlayHoldShowsAndHides(t *testing.T) {
	sink := &recordSink{}
	o := newGridOverlay(sink, 2, 2)

	o.HandleHoldStart()
	if !o.Visible() {
		t.Fatal("not visible after hold start")
	}
	o.HandleHoldEnd()
	if o.Visible() {
		t.Fatal("still visible after hold end")
	}
	want := []string{"show 2x2 pinned=false", "hide"}
	if !slices.Equal(sink.events, want) {
		t.Errorf("events = %v, want %v", sink.events, want)
	}
}

func TestOverlayToggle(t *testing.T) {
	sink := &recordSink{}
	o := newGridOverlay(sink, 3, 3)

	o.Toggle()
	o.Toggle()
	want := []string{"show 3x3 pinned=true", "hide"}
	if !slices.Equal(sink.events, want) {
		t.Errorf("events = %v, want %v", sink.events, want)
	}
}

func TestOverlaySetShapeRedrawsOnlyWhenVisible(t *testing.T) {
	sink := &recordSink{}
	o := newGridOverlay(sink, 2, 2)

	o.SetShape(1, 2)
	if len(sink.events) != 0 {
		t.Errorf("hidden overlay drew: %v", sink.events)
	}
	o.Toggle()
	o.SetShape(3, 4)
	want := []string{"show 1x2 pinned=true", "show 3x4 pinned=true"}
	if !slices.Equal(sink.events, want) {
		t.Errorf("events = %v, want %v", sink.events, want)
	}
	if r, c := o.Shape(); r != 3 || c != 4 {
		t.Errorf("Shape() = %dx%d", r, c)
	}
}

func TestOverlayDrivenByGesture(t *testing.T) {
	sink := &recordSink{}
	o := newGridOverlay(sink, 2, 2)
	g := gesture.New(o)

	g.Handle(true)
	g.Handle(false)
	g.Toggle()
	if g.State() != gesture.Pinned || !o.Visible() {
		t.Errorf("state = %v, visible = %v", g.State(), o.Visible())
	}

	// closing the window out from under a pinned overlay
	o.Dismiss()
	g.Handle(true)
	if !o.Visible() {
		t.Error("press after dismiss did not show the overlay")
	}
}

func TestOverlayToggleAfterDismissStaysPinned(t *testing.T) {
	sink := &recordSink{}
	o := newGridOverlay(sink, 2, 2)
	g := gesture.New(o)

	g.Toggle()
	o.Dismiss()
	g.Toggle()
	if g.State() != gesture.Pinned || !o.Visible() {
		t.Fatalf("state = %v, visible = %v", g.State(), o.Visible())
	}
	g.Toggle()
	if g.State() != gesture.Idle || o.Visible() {
		t.Errorf("state = %v, visible = %v", g.State(), o.Visible())
	}
}
