//go:build !darwin

package tray

func Init() <-chan struct{}         { return quitCh }
func updateIcon(bool, bool)         {}
func updateMonitorTitle(bool)       {}
func updatePurgeTitle(string, bool) {}
func updateTooltip(string)          {}
