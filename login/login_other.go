//go:build !darwin && !linux

package login

import "errors"

var errUnsupported = errors.New("start on login is not supported on this platform")

func Enabled() bool       { return false }
func Enable(Launch) error { return errUnsupported }
func Disable() error      { return nil }
