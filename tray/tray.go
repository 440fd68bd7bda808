package tray

import (
	"fmt"
	"sync"
	"time"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	mu         sync.Mutex
	monitoring bool
	overlayOn  bool
	invalid    int

	monitorFn func()
	toggleFn  func()
	resetFn   func()
	purgeFn   func()

	loginOn bool
	loginCb func(bool) error
)

func OnMonitor(fn func())         { monitorFn = fn }
func OnToggleOverlay(fn func())   { toggleFn = fn }
func OnReset(fn func())           { resetFn = fn }
func OnPurge(fn func())           { purgeFn = fn }
func SetLogin(on bool)            { loginOn = on }
func OnLogin(fn func(bool) error) { loginCb = fn }

// SetMonitoring reflects whether hotkeys are currently captured.
func SetMonitoring(on bool) {
	mu.Lock()
	monitoring = on
	overlay := overlayOn
	mu.Unlock()
	updateIcon(on, overlay)
	updateMonitorTitle(on)
	if on {
		updateTooltip("gridkey – hotkeys active")
	} else {
		updateTooltip("gridkey – hotkeys disabled")
	}
}

func SetOverlay(visible bool) {
	mu.Lock()
	overlayOn = visible
	on := monitoring
	mu.Unlock()
	updateIcon(on, visible)
}

// SetInvalid shows how many stored bindings can be purged.
func SetInvalid(n int) {
	mu.Lock()
	invalid = n
	mu.Unlock()
	if n == 0 {
		updatePurgeTitle("Purge Invalid Bindings", false)
		return
	}
	updatePurgeTitle(fmt.Sprintf("Purge Invalid Bindings (%d)", n), true)
}

func SetError(msg string) {
	updateTooltip("gridkey – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		mu.Lock()
		on := monitoring
		mu.Unlock()
		if on {
			updateTooltip("gridkey – hotkeys active")
		} else {
			updateTooltip("gridkey – hotkeys disabled")
		}
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

func state() (on, overlay bool, n int) {
	mu.Lock()
	defer mu.Unlock()
	return monitoring, overlayOn, invalid
}
