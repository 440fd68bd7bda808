// Package mainloop provides the primary execution context: a single
// goroutine that runs posted work in FIFO order.
package mainloop

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"gridkey/log"
)

// Loop is an unbounded FIFO of functions drained by Run. Post never blocks,
// so it is safe to call from an input callback thread.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool

	ran    atomic.Uint64
	panics atomic.Uint64
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post appends fn to the queue. Posting after Run has returned is a no-op.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted functions until ctx is done. A panicking function is
// logged with its stack and does not stop the loop.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}

		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.exec(fn)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			log.Errorf("main loop task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
	l.ran.Add(1)
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) Ran() uint64    { return l.ran.Load() }
func (l *Loop) Panics() uint64 { return l.panics.Load() }
