package main

import (
	"errors"
	"fmt"
	"sync"

	"gridkey/log"
)

var errNoTables = errors.New("no tables open")

// desk stands in for the window collaborators. It records what would have
// been arranged and reports it, so bindings can be exercised end to end.
type desk struct {
	sink    EventSink
	overlay *gridOverlay

	mu      sync.Mutex
	tables  int
	current int
	layout  string
}

func newDesk(sink EventSink, overlay *gridOverlay, tables int) *desk {
	return &desk{sink: sink, overlay: overlay, tables: tables, layout: "none"}
}

func (d *desk) Grid(rows, cols int) error {
	d.overlay.SetShape(rows, cols)
	return d.arrange(fmt.Sprintf("grid %dx%d", rows, cols))
}

func (d *desk) Cascade() error { return d.arrange("cascade") }
func (d *desk) Stack() error   { return d.arrange("stack") }

func (d *desk) Next() error     { return d.step(1) }
func (d *desk) Previous() error { return d.step(-1) }

func (d *desk) Layout() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout
}

func (d *desk) Current() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *desk) arrange(layout string) error {
	d.mu.Lock()
	if d.tables == 0 {
		d.mu.Unlock()
		return errNoTables
	}
	d.layout = layout
	n := d.tables
	d.mu.Unlock()

	log.Infof("arrange %d tables: %s", n, layout)
	d.sink.StatusLine(fmt.Sprintf("%d tables: %s", n, layout))
	return nil
}

func (d *desk) step(delta int) error {
	d.mu.Lock()
	if d.tables == 0 {
		d.mu.Unlock()
		return errNoTables
	}
	d.current = ((d.current+delta)%d.tables + d.tables) % d.tables
	cur, n := d.current, d.tables
	d.mu.Unlock()

	d.sink.StatusLine(fmt.Sprintf("table %d/%d", cur+1, n))
	return nil
}
