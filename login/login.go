// Package login registers gridkey to start when the user logs in. The
// registered command line is built from the running configuration so the
// login session starts the same setup.
package login

import (
	"fmt"
	"os"
	"path/filepath"
)

// Launch is the command a login session runs. It always starts headless.
type Launch struct {
	Executable string // empty means the running binary
	ConfigPath string
	LogDir     string
	Exclusive  bool
}

// Args returns the full command line, executable first.
func (l Launch) Args() []string {
	args := []string{l.Executable, "-headless"}
	if l.ConfigPath != "" {
		args = append(args, "-config", l.ConfigPath)
	}
	if l.LogDir != "" {
		args = append(args, "-logpath", l.LogDir)
	}
	if l.Exclusive {
		args = append(args, "-exclusive")
	}
	return args
}

// resolve fills in the executable and makes paths absolute, since the login
// session starts in a different working directory.
func (l Launch) resolve() (Launch, error) {
	if l.Executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return l, fmt.Errorf("resolve executable: %w", err)
		}
		l.Executable = exe
	}
	for _, p := range []*string{&l.ConfigPath, &l.LogDir} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return l, fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return l, nil
}
