package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gridkey/action"
	"gridkey/binding"
	"gridkey/gesture"
	"gridkey/hotkey"
	"gridkey/keyid"
	"gridkey/shortcut"
)

func testDeps(calls *[]string) tuiDeps {
	rec := func(name string) func() {
		return func() { *calls = append(*calls, name) }
	}
	return tuiDeps{
		backend: "fake",
		entries: func() []shortcut.Entry { return nil },
		invalid: func() []binding.Binding { return nil },
		gesture: func() gesture.State { return gesture.Idle },
		running: func() bool { return true },
		stats:   func() hotkey.Stats { return hotkey.Stats{} },
		reset:   rec("reset"),
		purge:   rec("purge"),
		toggle:  rec("toggle"),
		monitor: rec("monitor"),
	}
}

func TestTUIKeysTriggerDeps(t *testing.T) {
	var calls []string
	var m tea.Model = tuiModel{deps: testDeps(&calls)}

	for _, k := range "rptm" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{k}})
	}
	want := []string{"reset", "purge", "toggle", "monitor"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestTUIRecentActionsCapped(t *testing.T) {
	var m tea.Model = tuiModel{deps: testDeps(new([]string))}
	for i := 0; i < maxRecentActions+3; i++ {
		m, _ = m.Update(ActionMsg{Name: string(rune('a' + i))})
	}
	got := m.(tuiModel).actions
	if len(got) != maxRecentActions {
		t.Fatalf("kept %d actions", len(got))
	}
	if got[0] != string(rune('a'+maxRecentActions+2)) {
		t.Errorf("most recent = %q", got[0])
	}
}

func TestTUIOverlayMessages(t *testing.T) {
	var m tea.Model = tuiModel{deps: testDeps(new([]string))}
	m, _ = m.Update(OverlayShowMsg{Rows: 3, Cols: 4, Pinned: true})
	tm := m.(tuiModel)
	if !tm.overlayShown || tm.overlayRows != 3 || tm.overlayCols != 4 || !tm.overlayPin {
		t.Errorf("after show: %+v", tm)
	}
	m, _ = m.Update(OverlayHideMsg{})
	if m.(tuiModel).overlayShown {
		t.Error("still shown after hide")
	}
}

func TestRenderGrid(t *testing.T) {
	tests := []struct {
		rows, cols int
		lines      int
	}{
		{1, 1, 3},
		{2, 2, 5},
		{3, 4, 7},
	}
	for _, tt := range tests {
		lines := strings.Split(renderGrid(tt.rows, tt.cols), "\n")
		if len(lines) != tt.lines {
			t.Errorf("renderGrid(%d, %d) has %d lines, want %d", tt.rows, tt.cols, len(lines), tt.lines)
		}
		if n := strings.Count(lines[0], "┬"); n != tt.cols-1 {
			t.Errorf("renderGrid(%d, %d) top has %d joints", tt.rows, tt.cols, n)
		}
	}
}

func TestRenderBindings(t *testing.T) {
	cascade, _ := action.Default.Lookup("layout.cascade")
	next, _ := action.Default.Lookup("table.next")
	entries := []shortcut.Entry{
		{Action: cascade, ID: cascade.Default, Bound: true},
		{Action: next},
	}
	invalid := []binding.Binding{{ActionName: "removed.action", KeyCode: 7, Modifiers: uint64(keyid.Control)}}

	out := renderBindings(entries, invalid)
	for _, want := range []string{"Cascade", "unassigned", "Invalid bindings (1)", "removed.action", "Layout", "Navigation"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
