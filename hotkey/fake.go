package hotkey

import (
	"errors"
	"sync"
	"sync/atomic"

	"gridkey/keyid"
)

// FakeTap is an in-memory capture point for tests. Events sent while it is
// not installed are delivered to nobody and pass through.
type FakeTap struct {
	mu         sync.Mutex
	cb         Callback
	installs   int
	removes    int
	watched    []keyid.ID
	InstallErr error
}

func NewFakeTap() *FakeTap { return &FakeTap{} }

func (f *FakeTap) Name() string { return "fake" }

func (f *FakeTap) Install(cb Callback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InstallErr != nil {
		return f.InstallErr
	}
	if f.cb != nil {
		return errors.New("fake tap already installed")
	}
	f.cb = cb
	f.installs++
	return nil
}

func (f *FakeTap) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cb != nil {
		f.removes++
	}
	f.cb = nil
	return nil
}

func (f *FakeTap) Watch(ids []keyid.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = append([]keyid.ID(nil), ids...)
	return nil
}

func (f *FakeTap) Installed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb != nil
}

func (f *FakeTap) Installs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs
}

func (f *FakeTap) Removes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removes
}

func (f *FakeTap) Watched() []keyid.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]keyid.ID(nil), f.watched...)
}

// Send delivers ev to the installed callback and returns its decision.
func (f *FakeTap) Send(ev Event) Decision {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb == nil {
		return Pass
	}
	return cb(ev)
}

func (f *FakeTap) SimKeydown(code uint16, flags keyid.Modifier) Decision {
	return f.Send(Event{Kind: KindDown, Code: code, Flags: flags})
}

func (f *FakeTap) SimKeyup(code uint16, flags keyid.Modifier) Decision {
	return f.Send(Event{Kind: KindUp, Code: code, Flags: flags})
}

// StaticAuthorizer reports a fixed authorization state and counts requests.
type StaticAuthorizer struct {
	Allow      bool
	RequestErr error
	requests   *atomic.Int32
}

func NewStaticAuthorizer(allow bool) StaticAuthorizer {
	return StaticAuthorizer{Allow: allow, requests: new(atomic.Int32)}
}

func (a StaticAuthorizer) Granted() bool { return a.Allow }

func (a StaticAuthorizer) Request() error {
	if a.requests != nil {
		a.requests.Add(1)
	}
	return a.RequestErr
}

func (a StaticAuthorizer) Requests() int {
	if a.requests == nil {
		return 0
	}
	return int(a.requests.Load())
}
