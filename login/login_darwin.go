//go:build darwin

package login

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gridkey/internal/atomicfile"
)

// Label identifies the launch agent.
const Label = "com.gridkey.agent"

func plistPath() string {
	return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", Label+".plist")
}

func Enabled() bool {
	_, err := os.Stat(plistPath())
	return err == nil
}

// Enable installs the launch agent and loads it into the GUI domain, replacing
// an agent loaded from an older command line.
func Enable(l Launch) error {
	l, err := l.resolve()
	if err != nil {
		return err
	}
	path := plistPath()
	if err := atomicfile.Write(path, renderPlist(Label, l.Args()), 0o600); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}

	domain := guiDomain()
	exec.Command("launchctl", "bootout", domain, path).Run()
	if out, err := exec.Command("launchctl", "bootstrap", domain, path).CombinedOutput(); err != nil {
		return fmt.Errorf("launchctl bootstrap %s: %w (%s)", domain, err, out)
	}
	return nil
}

func Disable() error {
	path := plistPath()
	if !Enabled() {
		return nil
	}
	exec.Command("launchctl", "bootout", guiDomain(), path).Run()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove plist: %w", err)
	}
	return nil
}

func guiDomain() string { return fmt.Sprintf("gui/%d", os.Getuid()) }
