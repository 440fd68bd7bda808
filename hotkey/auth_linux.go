//go:build linux

package hotkey

import (
	"gridkey/log"
)

// inputAuthorizer treats read access to a keyboard device as the permission
// to monitor input. There is no OS prompt to raise, so Request only leaves a
// hint in the log.
type inputAuthorizer struct {
	exclusive bool
}

func NewAuthorizer(opts TapOptions) Authorizer {
	return inputAuthorizer{exclusive: opts.Exclusive}
}

func (a inputAuthorizer) Granted() bool {
	keyboards, err := findKeyboards()
	if err != nil || firstReadable(keyboards) == "" {
		return false
	}
	if a.exclusive && uinputWritable() != nil {
		return false
	}
	return true
}

func (a inputAuthorizer) Request() error {
	log.Warn("input monitoring needs access to /dev/input: run sudo usermod -aG input $USER, then re-login")
	if a.exclusive {
		log.Warn("exclusive capture also needs /dev/uinput: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
	}
	return nil
}
