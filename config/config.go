// Package config loads the YAML application config. Hotkey bindings are not
// stored here; they live in the preference store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"gridkey/internal/atomicfile"
	"gridkey/keyid"
	"gridkey/log"
)

const (
	UITUI      = "tui"
	UIHeadless = "headless"
)

type CaptureConfig struct {
	// Exclusive grabs keyboards on evdev so matched hotkeys are swallowed.
	Exclusive bool `yaml:"exclusive"`
}

type OverlayConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

type Config struct {
	LogPath   string        `yaml:"log_path,omitempty"`
	PrefsPath string        `yaml:"prefs_path,omitempty"`
	UI        string        `yaml:"ui"`
	Capture   CaptureConfig `yaml:"capture"`
	Overlay   OverlayConfig `yaml:"overlay"`
	// Defaults replaces catalog default hotkeys by action ID, e.g.
	// "overlay.hold": "Ctrl+Alt+Space".
	Defaults map[string]string `yaml:"defaults,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		UI:      UITUI,
		Overlay: OverlayConfig{Rows: 2, Cols: 2},
	}
}

func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return filepath.Join(base, "gridkey", "config.yaml")
}

// Load reads path. A missing or empty file yields the defaults. A file that
// fails to parse or validate returns the defaults along with the error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Warnf("config %s unreadable, using defaults: %v", path, err)
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return atomicfile.Write(path, raw, 0o600)
}

func (c *Config) validate() error {
	switch c.UI {
	case "":
		c.UI = UITUI
	case UITUI, UIHeadless:
	default:
		return fmt.Errorf("ui: unknown mode %q", c.UI)
	}
	if c.Overlay.Rows < 1 || c.Overlay.Rows > 9 || c.Overlay.Cols < 1 || c.Overlay.Cols > 9 {
		return fmt.Errorf("overlay: %dx%d out of range 1..9", c.Overlay.Rows, c.Overlay.Cols)
	}
	for name, spec := range c.Defaults {
		if _, err := keyid.Parse(spec); err != nil {
			return fmt.Errorf("defaults.%s: %w", name, err)
		}
	}
	return nil
}

// DefaultHotkeys returns the parsed Defaults overrides.
func (c Config) DefaultHotkeys() map[string]keyid.ID {
	out := make(map[string]keyid.ID, len(c.Defaults))
	for name, spec := range c.Defaults {
		if id, err := keyid.Parse(spec); err == nil {
			out[name] = id
		}
	}
	return out
}
