package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/term"

	"gridkey/action"
	"gridkey/binding"
	"gridkey/config"
	"gridkey/doctor"
	"gridkey/gesture"
	"gridkey/hotkey"
	"gridkey/log"
	"gridkey/login"
	"gridkey/mainloop"
	"gridkey/prefs"
	"gridkey/shortcut"
	"gridkey/shutdown"
	"gridkey/tray"
)

var version = "dev"

// guiMode is set when the fyne overlay window owns the main thread.
var guiMode bool

// guiMenu is the set of menu actions shared by the tray and the window.
type guiMenu struct {
	toggle func()
	reset  func()
	purge  func()
}

// app holds the wired components of one session.
type app struct {
	cfg     config.Config
	loop    *mainloop.Loop
	in      *hotkey.Interceptor
	tapName string
	gesture *gesture.Dispatcher
	overlay *gridOverlay
	router  *action.Router
	mgr     *shortcut.Manager
	prefs   *prefs.File
	sink    EventSink
}

var (
	shutdownOnce sync.Once
	session      *app
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if a := session; a != nil {
			if err := a.in.Stop(); err != nil {
				log.Warnf("stop monitoring: %v", err)
			}
			a.gesture.Reset()
			log.SessionEnd(int(a.router.Fired()))
		}
		log.Close()
		tray.Quit()
		quitGUI()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

func run() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run hotkey diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	configFlag := flag.String("config", "", "config file path (default: OS config dir)")
	resetFlag := flag.Bool("reset", false, "Reset all hotkeys to their defaults and exit")
	purgeFlag := flag.Bool("purge", false, "Remove stored bindings for unknown actions and exit")
	listFlag := flag.Bool("list", false, "Print hotkey bindings and exit")
	headlessFlag := flag.Bool("headless", false, "Run without terminal UI")
	exclusiveFlag := flag.Bool("exclusive", false, "Grab keyboards so hotkeys are swallowed (Linux)")
	loginFlag := flag.String("login", "", "Start on login: on or off")
	flag.Bool("gui", false, "Show the overlay in a window (requires -tags gui)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("gridkey %s\n", version)
		os.Exit(0)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if *exclusiveFlag {
		cfg.Capture.Exclusive = true
	}
	if *headlessFlag {
		cfg.UI = config.UIHeadless
	}

	// Resolve log directory early: flag, then env, then config file
	logFlag := *logPathFlag
	if logFlag == "" && os.Getenv("GRIDKEY_LOG_PATH") == "" {
		logFlag = cfg.LogPath
	}
	logPath, err := log.ResolveDir(logFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	// the login session repeats the explicit choices of this run
	launch := login.Launch{ConfigPath: *configFlag, Exclusive: *exclusiveFlag}
	if *logPathFlag != "" || os.Getenv("GRIDKEY_LOG_PATH") != "" {
		launch.LogDir = logPath
	}
	if *loginFlag != "" {
		os.Exit(setLogin(*loginFlag, launch))
	}

	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		if prefsPath, err = prefs.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	catalog := action.Default.WithDefaults(cfg.DefaultHotkeys())

	if *doctorFlag {
		probe, _ := catalog.Lookup("overlay.hold")
		os.Exit(doctor.Run(doctor.Options{
			Exclusive: cfg.Capture.Exclusive,
			PrefsPath: prefsPath,
			Catalog:   catalog,
			Probe:     probe.Default,
		}))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	sinks := fanout{}
	a := newApp(cfg, catalog, prefs.Open(prefsPath), &sinks)

	switch {
	case *resetFlag:
		os.Exit(report(a.mgr.ResetToDefaults(), "hotkeys reset to defaults"))
	case *purgeFlag:
		if err := a.mgr.LoadBindings(); err != nil {
			os.Exit(report(err, ""))
		}
		n, err := a.mgr.PurgeInvalidBindings()
		os.Exit(report(err, fmt.Sprintf("purged %d invalid bindings", n)))
	case *listFlag:
		if err := a.mgr.Start(); err != nil {
			os.Exit(report(err, ""))
		}
		printBindings(a.mgr)
		os.Exit(0)
	}

	session = a
	if err := a.mgr.Start(); err != nil {
		log.Errorf("restoring bindings: %v", err)
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	menu := guiMenu{
		toggle: func() { a.loop.Post(a.gesture.Toggle) },
		reset:  func() { a.loop.Post(func() { a.reset() }) },
		purge:  func() { a.loop.Post(func() { a.purge() }) },
	}
	if guiMode {
		if s := attachGUI(menu, a.overlay.Dismiss); s != nil {
			sinks = append(sinks, s)
		}
	}

	useTUI := cfg.UI == config.UITUI && term.IsTerminal(int(os.Stdin.Fd()))
	if useTUI {
		sinks = append(sinks, tuiSink{})
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(a.tuiDeps(menu))
		tuiMu.Unlock()
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	} else {
		sinks = append(sinks, logSink{})
	}

	var trayQuit <-chan struct{}
	if !guiMode {
		sinks = append(sinks, trayEvents{mgr: a.mgr})
		tray.OnMonitor(func() { a.loop.Post(a.toggleMonitoring) })
		tray.OnToggleOverlay(menu.toggle)
		tray.OnReset(menu.reset)
		tray.OnPurge(menu.purge)
		tray.SetLogin(login.Enabled())
		tray.OnLogin(func(on bool) error {
			if on {
				return login.Enable(launch)
			}
			return login.Disable()
		})
		trayQuit = tray.Init()
	}

	// sinks are final from here on
	go a.loop.Run(ctx)

	if err := a.prefs.Watch(ctx, func() {
		log.Info("preferences changed on disk, reloading bindings")
		a.loop.Post(func() {
			if err := a.mgr.LoadBindings(); err != nil {
				log.Errorf("reloading bindings: %v", err)
			}
		})
	}); err != nil {
		log.Warnf("not watching preferences: %v", err)
	}

	a.startMonitoring()
	log.SessionStart(a.tapName, countBound(a.mgr), len(a.mgr.InvalidBindings()))

	select {
	case <-ctx.Done():
	case <-trayQuit:
	}
	gracefulShutdown()
}

func newApp(cfg config.Config, catalog action.Catalog, pf *prefs.File, sink EventSink) *app {
	a := &app{cfg: cfg, prefs: pf, sink: sink}
	a.loop = mainloop.New()

	opts := hotkey.TapOptions{Exclusive: cfg.Capture.Exclusive}
	tap := hotkey.NewTap(opts)
	a.tapName = tap.Name()
	a.in = hotkey.NewInterceptor(tap, hotkey.NewAuthorizer(opts), a.loop)

	a.overlay = newGridOverlay(sink, cfg.Overlay.Rows, cfg.Overlay.Cols)
	a.gesture = gesture.New(a.overlay)
	d := newDesk(sink, a.overlay, 4)
	a.router = action.NewRouter(catalog, d, d, a.gesture)
	a.router.OnFire(func(act action.Action) { sink.ActionFired(act.Name) })

	a.mgr = shortcut.NewManager(a.in, binding.NewStore(pf), a.router)
	a.mgr.OnChange(sink.BindingsChanged)
	return a
}

// startMonitoring reports failures instead of retrying; the user can try
// again from the TUI or tray once authorization is granted.
func (a *app) startMonitoring() {
	err := a.in.Start()
	tray.SetMonitoring(err == nil)
	switch {
	case err == nil:
		a.sink.StatusLine(activeStatus(hotkey.TapOptions{Exclusive: a.cfg.Capture.Exclusive}))
	case errors.Is(err, hotkey.ErrNotAuthorized):
		a.sink.StatusLine("input monitoring not authorized; grant it, then press m")
		tray.SetError("input monitoring not authorized")
	default:
		a.sink.StatusLine(fmt.Sprintf("hotkeys disabled: %v", err))
		tray.SetError("hotkeys disabled")
	}
}

func activeStatus(opts hotkey.TapOptions) string {
	if note := hotkey.CaptureNote(opts); note != "" {
		return "hotkeys active (" + note + ")"
	}
	return "hotkeys active"
}

func (a *app) toggleMonitoring() {
	if !a.in.Running() {
		a.startMonitoring()
		return
	}
	if err := a.in.Stop(); err != nil {
		log.Warnf("stop monitoring: %v", err)
	}
	a.gesture.Reset()
	tray.SetMonitoring(false)
	a.sink.StatusLine("hotkeys paused")
}

func (a *app) reset() {
	if err := a.mgr.ResetToDefaults(); err != nil {
		log.Errorf("reset hotkeys: %v", err)
		a.sink.StatusLine("reset failed: " + err.Error())
		return
	}
	a.sink.StatusLine("hotkeys reset to defaults")
}

func (a *app) purge() {
	n, err := a.mgr.PurgeInvalidBindings()
	if err != nil {
		log.Errorf("purge bindings: %v", err)
		a.sink.StatusLine("purge failed: " + err.Error())
		return
	}
	a.sink.StatusLine(fmt.Sprintf("purged %d invalid bindings", n))
}

func (a *app) tuiDeps(menu guiMenu) tuiDeps {
	return tuiDeps{
		backend: a.tapName,
		entries: a.mgr.Entries,
		invalid: a.mgr.InvalidBindings,
		gesture: a.gesture.State,
		running: a.in.Running,
		stats:   a.in.Stats,
		reset:   menu.reset,
		purge:   menu.purge,
		toggle:  menu.toggle,
		monitor: func() { a.loop.Post(a.toggleMonitoring) },
	}
}

func countBound(m *shortcut.Manager) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Bound {
			n++
		}
	}
	return n
}

func printBindings(m *shortcut.Manager) {
	for _, e := range m.Entries() {
		combo := "-"
		if e.Bound {
			combo = e.ID.String()
		}
		fmt.Printf("%-16s %-22s %s\n", e.Action.ID, e.Action.Name, combo)
	}
	for _, b := range m.InvalidBindings() {
		fmt.Printf("%-16s %-22s %s (invalid)\n", b.ActionName, "?", b.ID())
	}
}

func setLogin(mode string, launch login.Launch) int {
	var err error
	switch mode {
	case "on":
		err = login.Enable(launch)
	case "off":
		err = login.Disable()
	default:
		err = fmt.Errorf("-login: want on or off, got %q", mode)
	}
	return report(err, "start on login: "+mode)
}

func report(err error, ok string) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if ok != "" {
		fmt.Println(ok)
	}
	return 0
}

// logSink reports display events to the diagnostics log when no TUI runs.
type logSink struct{}

func (logSink) OverlayShow(rows, cols int, pinned bool) {
	log.Infof("overlay shown %dx%d pinned=%v", rows, cols, pinned)
}
func (logSink) OverlayHide()            { log.Info("overlay hidden") }
func (logSink) ActionFired(name string) { log.Info("action: " + name) }
func (logSink) StatusLine(text string)  { log.Info("status: " + text) }
func (logSink) BindingsChanged()        {}

// trayEvents mirrors overlay and binding state into the tray menu.
type trayEvents struct{ mgr *shortcut.Manager }

func (trayEvents) OverlayShow(int, int, bool) { tray.SetOverlay(true) }
func (trayEvents) OverlayHide()               { tray.SetOverlay(false) }
func (trayEvents) ActionFired(string)         {}
func (trayEvents) StatusLine(string)          {}
func (t trayEvents) BindingsChanged()         { tray.SetInvalid(len(t.mgr.InvalidBindings())) }
