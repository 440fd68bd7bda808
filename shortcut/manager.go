// Package shortcut binds catalog actions to global hotkeys and keeps the
// persisted binding list in step with what is registered.
package shortcut

import (
	"fmt"
	"slices"
	"sync"

	"gridkey/action"
	"gridkey/binding"
	"gridkey/keyid"
	"gridkey/log"
)

var ErrUnknownAction = action.ErrUnknownAction

// Registrar is the part of hotkey.Interceptor the manager drives.
type Registrar interface {
	Register(id keyid.ID, fn func()) bool
	RegisterPressRelease(id keyid.ID, fn func(down bool)) bool
	Unregister(id keyid.ID) bool
	ClearAll()
}

// Entry is one catalog action with its current hotkey, for display.
type Entry struct {
	Action action.Action
	ID     keyid.ID
	Bound  bool
}

// Manager owns the action-to-hotkey assignments. Every successful change is
// registered with the interceptor and persisted before the call returns.
//
// Orphaned records (action names the catalog no longer knows) are never
// registered. They stay in storage, after the resolvable bindings, until
// PurgeInvalidBindings is called.
type Manager struct {
	reg    Registrar
	store  *binding.Store
	router *action.Router

	mu       sync.Mutex
	byAction map[string]keyid.ID
	invalid  []binding.Binding
	onChange func()
}

func NewManager(reg Registrar, store *binding.Store, router *action.Router) *Manager {
	return &Manager{
		reg:      reg,
		store:    store,
		router:   router,
		byAction: make(map[string]keyid.ID),
	}
}

// OnChange sets a function called after bindings change.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Start restores stored bindings, or installs the defaults when nothing
// has been stored yet.
func (m *Manager) Start() error {
	if len(m.store.Load()) == 0 {
		return m.ResetToDefaults()
	}
	return m.LoadBindings()
}

// SetHotkey assigns id to the named action. The action's previous hotkey is
// released, and any other action holding id loses it.
func (m *Manager) SetHotkey(name string, id keyid.ID) error {
	a, ok := m.router.Catalog().Lookup(name)
	if !ok {
		return fmt.Errorf("set hotkey for %q: %w", name, ErrUnknownAction)
	}

	m.mu.Lock()
	if old, ok := m.byAction[name]; ok && old != id {
		m.reg.Unregister(old)
	}
	m.bind(a, id)
	err := m.persist()
	fn := m.onChange
	m.mu.Unlock()

	m.notify(fn)
	return err
}

// ClearHotkey removes the action's hotkey, if any.
func (m *Manager) ClearHotkey(name string) error {
	if _, ok := m.router.Catalog().Lookup(name); !ok {
		return fmt.Errorf("clear hotkey for %q: %w", name, ErrUnknownAction)
	}

	m.mu.Lock()
	id, ok := m.byAction[name]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	m.reg.Unregister(id)
	delete(m.byAction, name)
	log.BindingChange(name, "")
	err := m.persist()
	fn := m.onChange
	m.mu.Unlock()

	m.notify(fn)
	return err
}

// Hotkey returns the hotkey currently bound to the action.
func (m *Manager) Hotkey(name string) (keyid.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byAction[name]
	return id, ok
}

// ResetToDefaults drops every registration and binds each catalog action to
// its default in catalog order. The bindings are persisted once, at the end.
func (m *Manager) ResetToDefaults() error {
	m.mu.Lock()
	m.reg.ClearAll()
	clear(m.byAction)
	for _, a := range m.router.Catalog() {
		m.bind(a, a.Default)
	}
	err := m.persist()
	fn := m.onChange
	m.mu.Unlock()

	log.Infof("hotkeys reset to defaults")
	m.notify(fn)
	return err
}

// LoadBindings registers the stored bindings. Records naming unknown actions
// are collected as invalid instead. The resolved set is written back.
func (m *Manager) LoadBindings() error {
	stored := m.store.List()

	m.mu.Lock()
	m.reg.ClearAll()
	clear(m.byAction)
	m.invalid = nil

	catalog := m.router.Catalog()
	for _, b := range stored {
		a, ok := catalog.Lookup(b.ActionName)
		if !ok {
			log.OrphanedBinding(b.ActionName, b.KeyCode, b.Modifiers)
			m.invalid = append(m.invalid, b)
			continue
		}
		m.bind(a, b.ID())
	}
	err := m.persist()
	fn := m.onChange
	m.mu.Unlock()

	m.notify(fn)
	return err
}

// InvalidBindings lists the stored records whose action is unknown.
func (m *Manager) InvalidBindings() []binding.Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.invalid)
}

// PurgeInvalidBindings removes orphaned records from storage and reports how
// many were dropped. Registered bindings are untouched.
func (m *Manager) PurgeInvalidBindings() (int, error) {
	m.mu.Lock()
	n := len(m.invalid)
	if n == 0 {
		m.mu.Unlock()
		return 0, nil
	}
	for _, b := range m.invalid {
		log.BindingChange(b.ActionName, "")
	}
	m.invalid = nil
	err := m.persist()
	fn := m.onChange
	m.mu.Unlock()

	log.Infof("purged %d invalid bindings", n)
	m.notify(fn)
	return n, err
}

// Entries returns every catalog action with its binding, in catalog order.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog := m.router.Catalog()
	out := make([]Entry, 0, len(catalog))
	for _, a := range catalog {
		id, ok := m.byAction[a.ID]
		out = append(out, Entry{Action: a, ID: id, Bound: ok})
	}
	return out
}

// bind must be called with mu held.
func (m *Manager) bind(a action.Action, id keyid.ID) {
	for other, held := range m.byAction {
		if held == id && other != a.ID {
			delete(m.byAction, other)
			log.BindingChange(other, "")
		}
	}

	if a.Kind == action.PressRelease {
		m.reg.RegisterPressRelease(id, m.router.PressRelease(a))
	} else {
		m.reg.Register(id, m.router.FireOnce(a))
	}
	m.byAction[a.ID] = id
	log.BindingChange(a.ID, id.String())
}

// persist must be called with mu held. Resolvable bindings are written in
// catalog order, followed by the orphaned records.
func (m *Manager) persist() error {
	var bs []binding.Binding
	for _, a := range m.router.Catalog() {
		if id, ok := m.byAction[a.ID]; ok {
			bs = append(bs, binding.FromID(a.ID, id))
		}
	}
	bs = append(bs, m.invalid...)
	if err := m.store.Save(bs); err != nil {
		return fmt.Errorf("save bindings: %w", err)
	}
	return nil
}

func (m *Manager) notify(fn func()) {
	if fn != nil {
		fn()
	}
}
