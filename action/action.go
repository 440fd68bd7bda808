// Package action declares the catalog of logical actions that can be bound
// to global hotkeys, and routes fired actions to the collaborators that
// perform them.
package action

import (
	"errors"
	"slices"
	"strconv"

	"gridkey/keyid"
)

type Category uint8

const (
	Layout Category = iota
	Navigation
	Overlay
)

func (c Category) String() string {
	switch c {
	case Layout:
		return "Layout"
	case Navigation:
		return "Navigation"
	case Overlay:
		return "Overlay"
	}
	return "Unknown"
}

// Kind selects how a bound hotkey triggers the action.
type Kind uint8

const (
	FireOnce     Kind = iota // on key-down only
	PressRelease             // on key-down and key-up
)

// Op is the collaborator operation an action maps to.
type Op uint8

const (
	OpGrid Op = iota
	OpCascade
	OpStack
	OpNextTable
	OpPreviousTable
	OpHoldOverlay
	OpToggleOverlay
)

// Action is one catalog record. ID is the name persisted with a binding.
type Action struct {
	ID       string
	Name     string
	Category Category
	Kind     Kind
	Op       Op
	Rows     int // OpGrid only
	Cols     int
	Default  keyid.ID
}

var ErrUnknownAction = errors.New("unknown action")

// Catalog is an ordered action table. Order matters: when two defaults
// collide, the later action keeps the hotkey.
type Catalog []Action

func (c Catalog) Lookup(id string) (Action, bool) {
	for _, a := range c {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, a := range c {
		ids[i] = a.ID
	}
	return ids
}

func grid(rows, cols int, key string) Action {
	return Action{
		ID:       "grid." + strconv.Itoa(rows) + "x" + strconv.Itoa(cols),
		Name:     "Grid " + strconv.Itoa(rows) + "×" + strconv.Itoa(cols),
		Category: Layout,
		Op:       OpGrid,
		Rows:     rows,
		Cols:     cols,
		Default:  keyid.MustParse(key),
	}
}

// Default is the built-in catalog.
var Default = Catalog{
	grid(1, 2, "Ctrl+Alt+1"),
	grid(2, 2, "Ctrl+Alt+2"),
	grid(2, 3, "Ctrl+Alt+3"),
	grid(3, 3, "Ctrl+Alt+4"),
	grid(3, 4, "Ctrl+Alt+5"),
	{ID: "layout.cascade", Name: "Cascade", Category: Layout, Op: OpCascade, Default: keyid.MustParse("Ctrl+Alt+C")},
	{ID: "layout.stack", Name: "Stack", Category: Layout, Op: OpStack, Default: keyid.MustParse("Ctrl+Alt+S")},
	{ID: "table.next", Name: "Next Table", Category: Navigation, Op: OpNextTable, Default: keyid.MustParse("Ctrl+Alt+Right")},
	{ID: "table.previous", Name: "Previous Table", Category: Navigation, Op: OpPreviousTable, Default: keyid.MustParse("Ctrl+Alt+Left")},
	{ID: "overlay.hold", Name: "Hold Grid Overlay", Category: Overlay, Kind: PressRelease, Op: OpHoldOverlay, Default: keyid.MustParse("Ctrl+Alt+G")},
	{ID: "overlay.toggle", Name: "Toggle Grid Overlay", Category: Overlay, Op: OpToggleOverlay, Default: keyid.MustParse("Ctrl+Alt+Shift+G")},
}

// WithDefaults returns a copy of c with the default hotkeys of the named
// actions replaced. Unknown names are ignored.
func (c Catalog) WithDefaults(overrides map[string]keyid.ID) Catalog {
	out := slices.Clone(c)
	for i := range out {
		if id, ok := overrides[out[i].ID]; ok {
			out[i].Default = id
		}
	}
	return out
}
