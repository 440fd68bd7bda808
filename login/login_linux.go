//go:build linux

package login

import (
	"fmt"
	"os"
	"path/filepath"

	"gridkey/internal/atomicfile"
)

func desktopPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "autostart", "gridkey.desktop")
}

func Enabled() bool {
	_, err := os.Stat(desktopPath())
	return err == nil
}

// Enable writes an XDG autostart entry.
func Enable(l Launch) error {
	l, err := l.resolve()
	if err != nil {
		return err
	}
	if err := atomicfile.Write(desktopPath(), renderDesktop(l.Args()), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func Disable() error {
	if err := os.Remove(desktopPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}
