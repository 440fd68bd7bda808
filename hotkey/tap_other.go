//go:build !linux

package hotkey

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"gridkey/keyid"
)

// osTap registers each watched combination with the OS hotkey API
// (Carbon on macOS, RegisterHotKey on Windows). The OS consumes registered
// combinations itself, so every delivered event is already a match.
type osTap struct {
	mu   sync.Mutex
	cb   Callback
	want []keyid.ID
	regs map[keyid.ID]*registration
}

type registration struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

func NewTap(TapOptions) Tap {
	return &osTap{regs: make(map[keyid.ID]*registration)}
}

func (t *osTap) Name() string { return "os-hotkey" }

// Watch replaces the watched set. Before Install it only records the set.
func (t *osTap) Watch(ids []keyid.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.want = append([]keyid.ID(nil), ids...)
	if t.cb == nil {
		return nil
	}
	return t.apply()
}

func (t *osTap) Install(cb Callback) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cb != nil {
		return errors.New("os hotkey tap already installed")
	}
	t.cb = cb
	if err := t.apply(); err != nil {
		t.unregisterAll()
		t.cb = nil
		return err
	}
	return nil
}

func (t *osTap) Remove() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.unregisterAll()
	t.cb = nil
	return err
}

// apply must be called with mu held.
func (t *osTap) apply() error {
	want := make(map[keyid.ID]bool, len(t.want))
	for _, id := range t.want {
		want[id] = true
	}

	var errs []error
	for id, r := range t.regs {
		if !want[id] {
			close(r.done)
			if err := r.hk.Unregister(); err != nil {
				errs = append(errs, fmt.Errorf("unregister %s: %w", id, err))
			}
			delete(t.regs, id)
		}
	}
	for id := range want {
		if _, ok := t.regs[id]; ok {
			continue
		}
		hk := hotkey.New(osModifiers(id.Modifiers()), hotkey.Key(id.Code()))
		if err := hk.Register(); err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", id, err))
			continue
		}
		r := &registration{hk: hk, done: make(chan struct{})}
		t.regs[id] = r
		go forward(id, r, t.cb)
	}
	return errors.Join(errs...)
}

// unregisterAll must be called with mu held.
func (t *osTap) unregisterAll() error {
	var errs []error
	for id, r := range t.regs {
		close(r.done)
		if err := r.hk.Unregister(); err != nil {
			errs = append(errs, fmt.Errorf("unregister %s: %w", id, err))
		}
		delete(t.regs, id)
	}
	return errors.Join(errs...)
}

func forward(id keyid.ID, r *registration, cb Callback) {
	for {
		select {
		case <-r.done:
			return
		case _, ok := <-r.hk.Keydown():
			if !ok {
				return
			}
			cb(Event{Kind: KindDown, Code: id.Code(), Flags: id.Modifiers()})
		case _, ok := <-r.hk.Keyup():
			if !ok {
				return
			}
			cb(Event{Kind: KindUp, Code: id.Code(), Flags: id.Modifiers()})
		}
	}
}

// Diagnose checks hotkey availability and returns a status message.
func Diagnose(TapOptions) (string, error) {
	probe, ok := keyid.KeyCode("F12")
	if !ok {
		return "", errors.New("no F12 key on this platform")
	}
	id := keyid.New(probe, keyid.Control|keyid.Option|keyid.Shift)
	return diagnoseGrab(hotkey.New(osModifiers(id.Modifiers()), hotkey.Key(id.Code())), id)
}

type grabber interface {
	Register() error
	Unregister() error
}

func diagnoseGrab(g grabber, id keyid.ID) (string, error) {
	if err := g.Register(); err != nil {
		return "", fmt.Errorf("cannot register probe hotkey %s: %w", id, err)
	}
	if err := g.Unregister(); err != nil {
		return "", fmt.Errorf("probe hotkey %s registered but not released, it stays grabbed until exit: %w", id, err)
	}
	return fmt.Sprintf("hotkey support available (probe %s registered and released)", id), nil
}

// CaptureNote describes a capture limitation of opts, or returns "". The OS
// swallows registered combinations, so there is none here.
func CaptureNote(TapOptions) string { return "" }
