//go:build gui

package main

import (
	"runtime"

	"gridkey/gui"
)

var guiApp *gui.App

func initGUI() {
	guiMode = true

	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}

// attachGUI wires the overlay window into the running app. It returns nil
// when the window is not in use.
func attachGUI(menu guiMenu, onClose func()) EventSink {
	if guiApp == nil {
		return nil
	}
	guiApp.SetMenu(gui.Menu{
		ToggleOverlay: menu.toggle,
		Reset:         menu.reset,
		Purge:         menu.purge,
	})
	guiApp.OnClose(onClose)
	return guiApp
}

func quitGUI() {
	if guiApp != nil {
		guiApp.Quit()
	}
}
