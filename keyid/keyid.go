// Package keyid defines the canonical identity of a global shortcut: a native
// key code plus the subset of modifier flags that participate in matching.
package keyid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Modifier is a modifier flag bitmask in the CGEvent flag layout. Backends on
// other platforms translate their own modifier state into these bits.
type Modifier uint64

const (
	NonCoalesced Modifier = 1 << 8
	AlphaShift   Modifier = 1 << 16 // caps lock
	Shift        Modifier = 1 << 17
	Control      Modifier = 1 << 18
	Option       Modifier = 1 << 19
	Command      Modifier = 1 << 20
	NumericPad   Modifier = 1 << 21
	Help         Modifier = 1 << 22
	SecondaryFn  Modifier = 1 << 23
)

// Recognized is the set of modifiers that take part in equality and hashing.
// Every other bit is noise reported by the OS and is masked away.
const Recognized = Command | Control | Option | Shift

var (
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrEmpty           = errors.New("empty shortcut")
)

// ID is a canonical shortcut identity. The zero value is a valid identity for
// key code 0 without modifiers. IDs are comparable and can be used as map keys
// directly because the modifier mask is applied on construction.
type ID struct {
	code uint16
	mods Modifier
}

// New canonicalizes a raw key code and raw modifier flags.
func New(code uint16, flags Modifier) ID {
	return ID{code: code, mods: flags & Recognized}
}

func (id ID) Code() uint16        { return id.code }
func (id ID) Modifiers() Modifier { return id.mods & Recognized }

// Equal reports whether a and b name the same physical shortcut.
func Equal(a, b ID) bool {
	return a.code == b.code && a.mods&Recognized == b.mods&Recognized
}

// Hash returns a stable hash consistent with Equal.
func (id ID) Hash() uint64 {
	return uint64(id.code)<<32 | uint64(id.mods&Recognized)
}

func (id ID) String() string {
	var b strings.Builder
	for _, name := range id.Modifiers().Names() {
		b.WriteString(name)
		b.WriteByte('+')
	}
	b.WriteString(KeyName(id.code))
	return b.String()
}

// Glyphs renders the shortcut the way macOS menus do, e.g. "⌃⌥G".
func (id ID) Glyphs() string {
	var b strings.Builder
	m := id.Modifiers()
	if m&Control != 0 {
		b.WriteString("⌃")
	}
	if m&Option != 0 {
		b.WriteString("⌥")
	}
	if m&Shift != 0 {
		b.WriteString("⇧")
	}
	if m&Command != 0 {
		b.WriteString("⌘")
	}
	b.WriteString(KeyName(id.code))
	return b.String()
}

// Names lists the recognized modifiers in display order.
func (m Modifier) Names() []string {
	var names []string
	if m&Control != 0 {
		names = append(names, "Ctrl")
	}
	if m&Option != 0 {
		names = append(names, "Alt")
	}
	if m&Shift != 0 {
		names = append(names, "Shift")
	}
	if m&Command != 0 {
		names = append(names, "Cmd")
	}
	return names
}

var modifierAliases = map[string]Modifier{
	"ctrl":    Control,
	"control": Control,
	"alt":     Option,
	"option":  Option,
	"opt":     Option,
	"shift":   Shift,
	"cmd":     Command,
	"command": Command,
	"super":   Command,
	"win":     Command,
	"meta":    Command,
}

var keyAliases = map[string]string{
	"enter":     "return",
	"esc":       "escape",
	"del":       "delete",
	"bksp":      "backspace",
	"pgup":      "pageup",
	"pgdn":      "pagedown",
	"-":         "minus",
	"=":         "equal",
	"[":         "leftbracket",
	"]":         "rightbracket",
	";":         "semicolon",
	"'":         "quote",
	",":         "comma",
	".":         "period",
	"/":         "slash",
	"\\":        "backslash",
	"`":         "grave",
	"backquote": "grave",
}

var (
	codeByName map[string]uint16
	nameByCode map[uint16]string
)

func init() {
	codeByName = make(map[string]uint16, len(keyCodes))
	nameByCode = make(map[uint16]string, len(keyCodes))
	for name, code := range keyCodes {
		codeByName[strings.ToLower(name)] = code
		nameByCode[code] = name
	}
}

// KeyName returns the display name of a native key code, or its hex value
// when the code has no name on this platform.
func KeyName(code uint16) string {
	if name, ok := nameByCode[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// KeyCode looks up a key by display name or alias, case-insensitively.
// Hex literals such as "0x2A" are accepted as raw codes.
func KeyCode(name string) (uint16, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[n]; ok {
		n = alias
	}
	if code, ok := codeByName[n]; ok {
		return code, true
	}
	if strings.HasPrefix(n, "0x") {
		v, err := strconv.ParseUint(n[2:], 16, 16)
		if err == nil {
			return uint16(v), true
		}
	}
	return 0, false
}

// Parse reads a shortcut such as "Ctrl+Alt+G" or "cmd+shift+f12". The key
// comes last; duplicate modifiers collapse.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, ErrEmpty
	}
	parts := strings.Split(s, "+")
	keyPart := parts[len(parts)-1]
	if strings.TrimSpace(keyPart) == "" {
		return ID{}, fmt.Errorf("%q: %w", s, ErrEmpty)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return ID{}, fmt.Errorf("%q in %q: %w", p, s, ErrUnknownModifier)
		}
		mods |= m
	}

	code, ok := KeyCode(keyPart)
	if !ok {
		return ID{}, fmt.Errorf("%q in %q: %w", keyPart, s, ErrUnknownKey)
	}
	return New(code, mods), nil
}

// MustParse is Parse for static tables; it panics on malformed input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic("keyid: " + err.Error())
	}
	return id
}
