package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	bindingFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

// Stats mirrors the interceptor counters at the time of a snapshot.
type Stats struct {
	Seen       uint64
	Swallowed  uint64
	Passed     uint64
	Dispatched uint64
	Replaced   uint64
	Dropped    uint64
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: GRIDKEY_LOG_PATH environment variable
	if envPath := os.Getenv("GRIDKEY_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	bindingPath := filepath.Join(dir, "bindings_log.txt")
	bindingFile, err = os.OpenFile(bindingPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if bindingFile != nil {
		bindingFile.Close()
		bindingFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func HotkeyRegistered(combo string, pressRelease bool) {
	if !logReady {
		return
	}
	kind := "fire_once"
	if pressRelease {
		kind = "press_release"
	}
	diagLog.Debug().
		Str("combo", combo).
		Str("kind", kind).
		Msg("hotkey_registered")
}

// HotkeyReplaced records a registration that displaced an existing handler
// for the same key combination.
func HotkeyReplaced(combo string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("combo", combo).Msg("hotkey_replaced")
}

func MonitoringStarted(backend string, watched int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Int("watched", watched).
		Msg("monitoring_started")
}

func MonitoringFailed(err error) {
	if !logReady {
		return
	}
	diagLog.Error().Err(err).Msg("monitoring_failed")
}

func MonitoringStopped(s Stats) {
	if !logReady {
		return
	}
	diagLog.Info().
		Uint64("seen", s.Seen).
		Uint64("swallowed", s.Swallowed).
		Uint64("passed", s.Passed).
		Uint64("dispatched", s.Dispatched).
		Uint64("replaced", s.Replaced).
		Uint64("dropped", s.Dropped).
		Msg("monitoring_stopped")
}

func OrphanedBinding(action string, keyCode uint16, mods uint64) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Str("action", action).
		Uint16("key_code", keyCode).
		Uint64("modifiers", mods).
		Msg("orphaned_binding")
}

func Gesture(from, to, trigger string) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Str("from", from).
		Str("to", to).
		Str("trigger", trigger).
		Msg("gesture")
}

// BindingChange appends a human-readable line to the bindings log.
func BindingChange(action, combo string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	if bindingFile == nil {
		return
	}
	if combo == "" {
		combo = "-"
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, action, combo)
	bindingFile.WriteString(line)
}

func SessionStart(backend string, bindings, invalid int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Int("bindings", bindings).
		Int("invalid", invalid).
		Msg("session_start")
}

func SessionEnd(actions int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("actions", actions).
		Msg("session_end")
}
