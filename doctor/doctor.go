package doctor

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"gridkey/action"
	"gridkey/binding"
	"gridkey/hotkey"
	"gridkey/keyid"
	"gridkey/prefs"
)

// Options selects what the diagnostics check.
type Options struct {
	Exclusive bool
	PrefsPath string
	Catalog   action.Catalog
	// Probe is the hotkey the live check asks the user to press.
	Probe keyid.ID
}

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("gridkey doctor - hotkey diagnostics")
	fmt.Println("===================================")

	allPass := true

	if !checkAuthorization(opts) {
		allPass = false
	}
	if allPass && !checkBackend(opts) {
		allPass = false
	}
	if !checkBindings(opts) {
		allPass = false
	}
	if allPass && !checkLiveHotkey(opts) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkAuthorization(opts Options) bool {
	fmt.Println()
	fmt.Println("[1/4] Input monitoring authorization")

	auth := hotkey.NewAuthorizer(hotkey.TapOptions{Exclusive: opts.Exclusive})
	if auth.Granted() {
		fmt.Println("  PASS: authorized")
		return true
	}
	if err := auth.Request(); err != nil {
		fmt.Printf("  request failed: %v\n", err)
	}
	fmt.Println("  FAIL: not authorized")
	fmt.Println("  Grant input monitoring (macOS: System Settings > Privacy & Security;")
	fmt.Println("  Linux: sudo usermod -aG input $USER, then log in again)")
	return false
}

func checkBackend(opts Options) bool {
	fmt.Println()
	fmt.Println("[2/4] Capture backend")

	msg, err := hotkey.Diagnose(hotkey.TapOptions{Exclusive: opts.Exclusive})
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	if w := captureWarning(opts); w != "" {
		fmt.Println(w)
	}
	return true
}

// captureWarning is printed under a passing backend check when hotkeys are
// matched but not removed from the input stream.
func captureWarning(opts Options) string {
	note := hotkey.CaptureNote(hotkey.TapOptions{Exclusive: opts.Exclusive})
	if note == "" {
		return ""
	}
	return "  WARN: " + note
}

func checkBindings(opts Options) bool {
	fmt.Println()
	fmt.Println("[3/4] Stored bindings")

	if opts.PrefsPath == "" {
		fmt.Println("  SKIP: no preference file")
		return true
	}
	if _, err := os.Stat(opts.PrefsPath); os.IsNotExist(err) {
		fmt.Printf("  PASS: %s not created yet, defaults will be used\n", opts.PrefsPath)
		return true
	}

	records := binding.NewStore(prefs.Open(opts.PrefsPath)).List()
	var orphans []binding.Binding
	for _, b := range records {
		if _, ok := opts.Catalog.Lookup(b.ActionName); !ok {
			orphans = append(orphans, b)
		}
	}
	fmt.Printf("  %d stored, %d resolvable\n", len(records), len(records)-len(orphans))
	if len(orphans) == 0 {
		fmt.Println("  PASS: no invalid bindings")
		return true
	}
	for _, b := range orphans {
		fmt.Printf("  invalid: %s (%s)\n", b.ActionName, b.ID())
	}
	fmt.Println("  FAIL: run gridkey -purge to remove invalid bindings")
	return false
}

// chanExec hands posted work to the probe goroutine.
type chanExec chan func()

func (c chanExec) Post(fn func()) {
	select {
	case c <- fn:
	default:
	}
}

func checkLiveHotkey(opts Options) bool {
	fmt.Println()
	fmt.Println("[4/4] Hotkey detection")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("  SKIP: not running in a terminal")
		return true
	}

	exec := make(chanExec, 8)
	opt := hotkey.TapOptions{Exclusive: opts.Exclusive}
	in := hotkey.NewInterceptor(hotkey.NewTap(opt), hotkey.NewAuthorizer(opt), exec)

	events := make(chan bool, 8)
	in.RegisterPressRelease(opts.Probe, func(down bool) { events <- down })
	if err := in.Start(); err != nil {
		fmt.Printf("  FAIL: could not start monitoring: %v\n", err)
		return false
	}
	defer in.Stop()

	fmt.Printf("Press and release %s (%s)...\n", opts.Probe, opts.Probe.Glyphs())

	wait := func(want bool, d time.Duration) bool {
		deadline := time.After(d)
		for {
			select {
			case fn := <-exec:
				fn()
			case down := <-events:
				if down == want {
					return true
				}
			case <-deadline:
				return false
			}
		}
	}

	if !wait(true, 10*time.Second) {
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
	fmt.Println("  press detected")
	if !wait(false, 5*time.Second) {
		fmt.Println("  FAIL: release not reported")
		return false
	}
	resetTerminal()

	s := in.Stats()
	fmt.Printf("  PASS: press and release detected (%d events seen, %d swallowed)\n", s.Seen, s.Swallowed)
	return true
}
