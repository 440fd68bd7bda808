//go:build !gui

package main

func initGUI() {
	panic("gridkey: built without GUI support (rebuild with -tags gui)")
}

func attachGUI(guiMenu, func()) EventSink { return nil }

func quitGUI() {}
