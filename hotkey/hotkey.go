// Package hotkey intercepts system-wide key events and dispatches registered
// shortcuts onto the application's primary execution context.
package hotkey

import (
	"errors"

	"gridkey/keyid"
)

type Kind uint8

const (
	KindOther Kind = iota
	KindDown
	KindUp
)

func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	}
	return "other"
}

// Event is a raw key event as seen by a capture point.
type Event struct {
	Kind   Kind
	Code   uint16
	Flags  keyid.Modifier
	Repeat bool
}

// Decision tells the capture point what to do with an event.
type Decision uint8

const (
	Pass Decision = iota
	Swallow
)

// Callback runs on the capture point's own thread for every event. It must
// not block.
type Callback func(Event) Decision

// Tap is a platform capture point.
type Tap interface {
	Name() string
	Install(cb Callback) error
	Remove() error
}

// Watcher is implemented by taps that only receive combinations registered
// with the OS, rather than every key event. The interceptor keeps the
// watched set in sync with its handler table.
type Watcher interface {
	Watch(ids []keyid.ID) error
}

// Authorizer answers whether the process may monitor input, and asks the OS
// for that permission without forcing a modal prompt.
type Authorizer interface {
	Granted() bool
	Request() error
}

// Executor runs functions on the primary execution context in the order they
// were posted. Post must not block.
type Executor interface {
	Post(fn func())
}

var (
	ErrNotAuthorized = errors.New("input monitoring not authorized")
	ErrTapDenied     = errors.New("event tap could not be installed")
)

// TapOptions configures the platform tap returned by NewTap.
type TapOptions struct {
	// Exclusive grabs keyboards so matched events can be swallowed on
	// backends that otherwise only observe (evdev).
	Exclusive bool
}
