//go:build darwin

package tray

import (
	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"
)

var (
	mMonitor  *systray.MenuItem
	mToggle   *systray.MenuItem
	mReset    *systray.MenuItem
	mPurge    *systray.MenuItem
	mSettings *systray.MenuItem
	mLogin    *systray.MenuItem
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func updateIcon(on, overlay bool) {
	switch {
	case !on:
		systray.SetIcon(iconOffHi)
	case overlay:
		systray.SetIcon(iconShownHi)
	default:
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
	}
}

func updateMonitorTitle(on bool) {
	if mMonitor == nil {
		return
	}
	if on {
		mMonitor.SetTitle("Disable Hotkeys")
	} else {
		mMonitor.SetTitle("Enable Hotkeys")
	}
}

func updatePurgeTitle(title string, enabled bool) {
	if mPurge == nil {
		return
	}
	mPurge.SetTitle(title)
	if enabled {
		mPurge.Enable()
	} else {
		mPurge.Disable()
	}
}

func updateTooltip(msg string) {
	systray.SetTooltip(msg)
}

func onReady() {
	on, overlay, n := state()
	updateIcon(on, overlay)
	systray.SetTooltip("gridkey")

	mMonitor = systray.AddMenuItem("Enable Hotkeys", "Start or stop capturing hotkeys")
	mMonitor.Click(func() {
		if monitorFn != nil {
			monitorFn()
		}
	})
	updateMonitorTitle(on)

	mToggle = systray.AddMenuItem("Toggle Grid Overlay", "Pin or dismiss the grid overlay")
	mToggle.Click(func() {
		if toggleFn != nil {
			toggleFn()
		}
	})

	systray.AddSeparator()

	mReset = systray.AddMenuItem("Reset Hotkeys to Defaults", "Replace every binding with its default")
	mReset.Click(func() {
		if resetFn != nil {
			resetFn()
		}
	})

	mPurge = systray.AddMenuItem("Purge Invalid Bindings", "Remove stored bindings for unknown actions")
	mPurge.Click(func() {
		if purgeFn != nil {
			purgeFn()
		}
	})
	SetInvalid(n)

	mSettings = systray.AddMenuItem("Settings", "Settings")
	mLogin = mSettings.AddSubMenuItemCheckbox("Start on Login", "Launch gridkey when you log in", loginOn)
	mLogin.Click(func() {
		if mLogin.Checked() {
			mLogin.Uncheck()
		} else {
			mLogin.Check()
		}
		if loginCb != nil {
			if err := loginCb(mLogin.Checked()); err != nil {
				SetError(err.Error())
			}
		}
	})

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit gridkey")
	mQuit.Click(func() { Quit() })
	systray.CreateMenu()
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}
