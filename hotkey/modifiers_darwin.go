package hotkey

import (
	"golang.design/x/hotkey"

	"gridkey/keyid"
)

func osModifiers(m keyid.Modifier) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m&keyid.Control != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m&keyid.Option != 0 {
		mods = append(mods, hotkey.ModOption)
	}
	if m&keyid.Shift != 0 {
		mods = append(mods, hotkey.ModShift)
	}
	if m&keyid.Command != 0 {
		mods = append(mods, hotkey.ModCmd)
	}
	return mods
}
