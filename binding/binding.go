// Package binding persists the action-to-hotkey assignments as an ordered
// list of records under a single preference key.
package binding

import (
	"gridkey/keyid"
	"gridkey/log"
	"gridkey/prefs"
)

// Key is the preference key holding the binding list.
const Key = "hotkeyBindings"

// Binding is one persisted assignment. Modifiers holds the masked flag bits.
type Binding struct {
	ActionName string `json:"actionName"`
	KeyCode    uint16 `json:"keyCode"`
	Modifiers  uint64 `json:"modifiers"`
}

func FromID(action string, id keyid.ID) Binding {
	return Binding{ActionName: action, KeyCode: id.Code(), Modifiers: uint64(id.Modifiers())}
}

// ID rebuilds the key identity. Unrecognized modifier bits are dropped.
func (b Binding) ID() keyid.ID {
	return keyid.New(b.KeyCode, keyid.Modifier(b.Modifiers))
}

type Store struct {
	prefs prefs.Store
	key   string
}

func NewStore(p prefs.Store) *Store {
	return &Store{prefs: p, key: Key}
}

// Save replaces the stored list with bs, in order.
func (s *Store) Save(bs []Binding) error {
	if bs == nil {
		bs = []Binding{}
	}
	return s.prefs.Set(s.key, bs)
}

// List returns the stored records in order. Missing or unreadable data
// yields an empty list; a decode failure is logged.
func (s *Store) List() []Binding {
	var bs []Binding
	ok, err := s.prefs.Get(s.key, &bs)
	if err != nil {
		log.Warnf("stored bindings unreadable, ignoring: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	return bs
}

// Load returns the stored records keyed by action name. When a name appears
// more than once the later record wins.
func (s *Store) Load() map[string]Binding {
	bs := s.List()
	m := make(map[string]Binding, len(bs))
	for _, b := range bs {
		m[b.ActionName] = b
	}
	return m
}
