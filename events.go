package main

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and the fyne window receive the same overlay and status events.
type EventSink interface {
	OverlayShow(rows, cols int, pinned bool)
	OverlayHide()
	ActionFired(name string)
	StatusLine(text string)
	BindingsChanged()
}

// fanout delivers every event to each sink in order.
type fanout []EventSink

func (f fanout) OverlayShow(rows, cols int, pinned bool) {
	for _, s := range f {
		s.OverlayShow(rows, cols, pinned)
	}
}

func (f fanout) OverlayHide() {
	for _, s := range f {
		s.OverlayHide()
	}
}

func (f fanout) ActionFired(name string) {
	for _, s := range f {
		s.ActionFired(name)
	}
}

func (f fanout) StatusLine(text string) {
	for _, s := range f {
		s.StatusLine(text)
	}
}

func (f fanout) BindingsChanged() {
	for _, s := range f {
		s.BindingsChanged()
	}
}
