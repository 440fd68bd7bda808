package keyid

import (
	"errors"
	"testing"
)

func TestNewMasksIgnoredFlags(t *testing.T) {
	noise := []Modifier{AlphaShift, NumericPad, Help, SecondaryFn, NonCoalesced, AlphaShift | NumericPad | SecondaryFn}
	for _, base := range []Modifier{0, Control, Control | Option, Command | Shift, Recognized} {
		want := New(42, base)
		for _, n := range noise {
			got := New(42, base|n)
			if got != want {
				t.Errorf("New(42, %#x) = %+v, want %+v", base|n, got, want)
			}
			if !Equal(got, want) {
				t.Errorf("Equal(%#x, %#x) = false", base|n, base)
			}
			if got.Hash() != want.Hash() {
				t.Errorf("Hash differs for %#x vs %#x", base|n, base)
			}
		}
	}
}

func TestMapKeyIgnoresNoise(t *testing.T) {
	m := map[ID]string{New(5, Control|Option): "grid"}
	if m[New(5, Control|Option|NumericPad|AlphaShift)] != "grid" {
		t.Error("lookup with noisy flags missed the entry")
	}
}

func TestDifferentIdentities(t *testing.T) {
	cases := []struct {
		a, b ID
	}{
		{New(5, Control), New(5, Option)},
		{New(5, Control), New(6, Control)},
		{New(5, Control), New(5, Control|Shift)},
		{New(5, 0), New(5, Command)},
	}
	for _, c := range cases {
		if Equal(c.a, c.b) || c.a == c.b {
			t.Errorf("%v and %v should differ", c.a, c.b)
		}
	}
}

func TestParse(t *testing.T) {
	g, ok := KeyCode("G")
	if !ok {
		t.Fatal("G missing from key table")
	}
	tests := []struct {
		in   string
		want ID
	}{
		{"Ctrl+Alt+G", New(g, Control|Option)},
		{"ctrl+option+g", New(g, Control|Option)},
		{" Control + Opt + G ", New(g, Control|Option)},
		{"Alt+Ctrl+G", New(g, Control|Option)},
		{"Ctrl+Ctrl+G", New(g, Control)},
		{"Cmd+Shift+G", New(g, Command|Shift)},
		{"Super+G", New(g, Command)},
		{"G", New(g, 0)},
		{"Ctrl+0x2A", New(0x2A, Control)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmpty},
		{"Ctrl+", ErrEmpty},
		{"Hyper+G", ErrUnknownModifier},
		{"Ctrl+Banana", ErrUnknownKey},
		{"Ctrl+0xZZ", ErrUnknownKey},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		if !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestAliases(t *testing.T) {
	for alias, name := range map[string]string{"enter": "Return", "Esc": "Escape", "PgUp": "PageUp", "/": "Slash"} {
		a, ok := KeyCode(alias)
		if !ok {
			t.Errorf("alias %q not resolved", alias)
			continue
		}
		n, _ := KeyCode(name)
		if a != n {
			t.Errorf("alias %q = %#x, want %#x", alias, a, n)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"Ctrl+Alt+G", "Ctrl+Alt+Shift+Cmd+F12", "Shift+Left", "Space", "Alt+1"} {
		id := MustParse(s)
		if got := id.String(); got != s {
			t.Errorf("MustParse(%q).String() = %q", s, got)
		}
	}
}

func TestGlyphs(t *testing.T) {
	id := MustParse("Cmd+Shift+Alt+Ctrl+G")
	if got := id.Glyphs(); got != "⌃⌥⇧⌘G" {
		t.Errorf("Glyphs() = %q", got)
	}
}

func TestKeyNameUnknown(t *testing.T) {
	if got := KeyName(0xFFF0); got != "0xFFF0" {
		t.Errorf("KeyName(0xFFF0) = %q", got)
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParse("Ctrl+Nope")
}
