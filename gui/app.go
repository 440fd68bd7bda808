//go:build gui

package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Menu holds the tray menu actions. Nil entries are left out.
type Menu struct {
	ToggleOverlay func()
	Reset         func()
	Purge         func()
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	grid    *GridWidget
	onReady func()
	posX    int
	posY    int

	mu      sync.Mutex
	menu    Menu
	onClose func()
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

// SetMenu installs the tray menu actions, rebuilding the menu when the app
// is already running.
func (a *App) SetMenu(m Menu) {
	a.mu.Lock()
	a.menu = m
	a.mu.Unlock()

	if a.fyneApp == nil {
		return
	}
	fyne.Do(func() {
		if desk, ok := a.fyneApp.(desktop.App); ok {
			desk.SetSystemTrayMenu(a.trayMenu())
		}
	})
}

// OnClose sets a function called when the user closes the overlay window.
func (a *App) OnClose(fn func()) {
	a.mu.Lock()
	a.onClose = fn
	a.mu.Unlock()
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.gridkey.overlay")
	a.fyneApp.Settings().SetTheme(&overlayTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", trayIcon())
		desk.SetSystemTrayMenu(a.trayMenu())
		desk.SetSystemTrayIcon(icon)
	}

	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("gridkey")
	}
	a.window.SetCloseIntercept(func() {
		a.window.Hide()
		a.mu.Lock()
		fn := a.onClose
		a.mu.Unlock()
		if fn != nil {
			fn()
		}
	})

	a.grid = NewGridWidget()
	a.window.SetContent(a.grid)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	size := a.grid.MinSize()
	a.window.Resize(size)

	// centered on the work area
	a.posX = (screenW - int(size.Width)) / 2
	a.posY = (screenH - int(size.Height)) / 2

	go a.onReady()

	// window stays hidden until the overlay is shown
	a.fyneApp.Run()
	return nil
}

func (a *App) trayMenu() *fyne.Menu {
	a.mu.Lock()
	m := a.menu
	a.mu.Unlock()

	var items []*fyne.MenuItem
	add := func(label string, fn func()) {
		if fn != nil {
			items = append(items, fyne.NewMenuItem(label, fn))
		}
	}
	add("Toggle Grid Overlay", m.ToggleOverlay)
	add("Reset Hotkeys to Defaults", m.Reset)
	add("Purge Invalid Bindings", m.Purge)
	items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem("Quit", a.Quit))
	return fyne.NewMenu("gridkey", items...)
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}

		// Configure GLFW attributes BEFORE showing
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
			return
		}
		a.window.Show()
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

// EventSink implementation

func (a *App) OverlayShow(rows, cols int, pinned bool) {
	if a.grid == nil {
		return
	}
	a.grid.SetShape(rows, cols, pinned)
	a.Show()
}

func (a *App) OverlayHide() {
	a.Hide()
}

func (a *App) ActionFired(name string) {
	if a.grid != nil {
		a.grid.SetCaption(name)
	}
}

func (a *App) StatusLine(text string) {
	if a.grid != nil {
		a.grid.SetCaption(text)
	}
}

func (a *App) BindingsChanged() {}
