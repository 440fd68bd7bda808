package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gridkey/keyid"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	if cfg.UI != want.UI || cfg.Overlay != want.Overlay || cfg.Capture.Exclusive {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "empty file",
			body: "  \n",
			check: func(t *testing.T, c Config) {
				if c.UI != UITUI {
					t.Errorf("UI = %q", c.UI)
				}
			},
		},
		{
			name: "full",
			body: `
log_path: /tmp/gk
prefs_path: /tmp/gk/prefs.json
ui: headless
capture:
  exclusive: true
overlay:
  rows: 3
  cols: 4
defaults:
  overlay.hold: Ctrl+Alt+Space
`,
			check: func(t *testing.T, c Config) {
				if c.LogPath != "/tmp/gk" || c.PrefsPath != "/tmp/gk/prefs.json" {
					t.Errorf("paths = %q, %q", c.LogPath, c.PrefsPath)
				}
				if c.UI != UIHeadless || !c.Capture.Exclusive {
					t.Errorf("ui=%q exclusive=%v", c.UI, c.Capture.Exclusive)
				}
				if c.Overlay.Rows != 3 || c.Overlay.Cols != 4 {
					t.Errorf("overlay = %+v", c.Overlay)
				}
				want := keyid.MustParse("Ctrl+Alt+Space")
				if got := c.DefaultHotkeys()["overlay.hold"]; got != want {
					t.Errorf("overlay.hold default = %v, want %v", got, want)
				}
			},
		},
		{
			name: "partial keeps defaults",
			body: "capture:\n  exclusive: true\n",
			check: func(t *testing.T, c Config) {
				if c.Overlay != DefaultConfig().Overlay {
					t.Errorf("overlay = %+v", c.Overlay)
				}
			},
		},
		{name: "bad yaml", body: "ui: [", wantErr: true},
		{name: "bad ui", body: "ui: gui\n", wantErr: true},
		{name: "bad overlay", body: "overlay:\n  rows: 0\n  cols: 2\n", wantErr: true},
		{name: "bad hotkey", body: "defaults:\n  grid.2x2: Ctrl+Banana\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if cfg.UI != UITUI || cfg.Overlay != DefaultConfig().Overlay {
					t.Errorf("error path did not return defaults: %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestBadHotkeyWrapsKeyError(t *testing.T) {
	_, err := Load(writeConfig(t, "defaults:\n  grid.2x2: Ctrl+Banana\n"))
	if !errors.Is(err, keyid.ErrUnknownKey) {
		t.Errorf("err = %v, want ErrUnknownKey", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Capture.Exclusive = true
	cfg.Overlay = OverlayConfig{Rows: 3, Cols: 3}
	cfg.Defaults = map[string]string{"table.next": "Ctrl+Shift+Right"}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Capture.Exclusive || got.Overlay != cfg.Overlay || got.Defaults["table.next"] != "Ctrl+Shift+Right" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI = "web"
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), cfg); err == nil {
		t.Error("expected error")
	}
}
