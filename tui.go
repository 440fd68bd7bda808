package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridkey/binding"
	"gridkey/gesture"
	"gridkey/hotkey"
	"gridkey/keyid"
	"gridkey/shortcut"
)

// TUI message types
type OverlayShowMsg struct {
	Rows, Cols int
	Pinned     bool
}
type OverlayHideMsg struct{}
type ActionMsg struct{ Name string }
type StatusMsg struct{ Text string }
type BindingsMsg struct{}
type tickMsg time.Time

// tuiDeps is everything the model reads or triggers. Triggers are expected
// to hand their work to the main loop and return immediately.
type tuiDeps struct {
	backend string
	entries func() []shortcut.Entry
	invalid func() []binding.Binding
	gesture func() gesture.State
	running func() bool
	stats   func() hotkey.Stats

	reset   func()
	purge   func()
	toggle  func()
	monitor func()
}

type tuiModel struct {
	deps          tuiDeps
	width, height int

	overlayShown bool
	overlayRows  int
	overlayCols  int
	overlayPin   bool

	status  string
	actions []string // most recent first
}

const maxRecentActions = 6

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	onStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	offStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	holdStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	comboStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func NewTUIProgram(deps tuiDeps) *tea.Program {
	m := tuiModel{deps: deps}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.deps.reset()
		case "p":
			m.deps.purge()
		case "t":
			m.deps.toggle()
		case "m":
			m.deps.monitor()
		}

	case tickMsg:
		return m, tuiTick()

	case OverlayShowMsg:
		m.overlayShown = true
		m.overlayRows, m.overlayCols = msg.Rows, msg.Cols
		m.overlayPin = msg.Pinned

	case OverlayHideMsg:
		m.overlayShown = false
		m.overlayPin = false

	case ActionMsg:
		m.actions = append([]string{msg.Name}, m.actions...)
		if len(m.actions) > maxRecentActions {
			m.actions = m.actions[:maxRecentActions]
		}

	case StatusMsg:
		m.status = msg.Text

	case BindingsMsg:
		// re-render only
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	const leftWidth = 40
	var left []string

	if m.deps.running() {
		left = append(left, onStyle.Render("● MONITORING")+dimStyle.Render(" ("+m.deps.backend+")"))
	} else {
		left = append(left, offStyle.Render("○ HOTKEYS DISABLED"))
	}
	if m.status != "" {
		left = append(left, dimStyle.Render(m.status))
	}
	s := m.deps.stats()
	left = append(left, dimStyle.Render(fmt.Sprintf("seen %d  swallowed %d  dispatched %d", s.Seen, s.Swallowed, s.Dispatched)))
	left = append(left, "")

	state := m.deps.gesture()
	left = append(left, titleStyle.Render("Overlay: "+state.String()))
	if m.overlayShown || state != gesture.Idle {
		style := holdStyle
		if state == gesture.Pinned || m.overlayPin {
			style = pinStyle
		}
		rows, cols := m.overlayRows, m.overlayCols
		if rows == 0 || cols == 0 {
			rows, cols = 2, 2
		}
		for _, line := range strings.Split(renderGrid(rows, cols), "\n") {
			left = append(left, style.Render(line))
		}
	} else {
		left = append(left, dimStyle.Render("hidden"))
	}
	left = append(left, "")

	if len(m.actions) > 0 {
		left = append(left, titleStyle.Render("Recent"))
		for _, a := range m.actions {
			left = append(left, dimStyle.Render("  "+a))
		}
		left = append(left, "")
	}

	left = append(left,
		boldHelp.Render("r")+helpStyle.Render(" reset  ")+
			boldHelp.Render("p")+helpStyle.Render(" purge  ")+
			boldHelp.Render("t")+helpStyle.Render(" toggle"),
		boldHelp.Render("m")+helpStyle.Render(" start/stop  ")+
			boldHelp.Render("q")+helpStyle.Render(" quit"),
		helpStyle.Render("gridkey "+version),
	)

	rightWidth := m.width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	leftPanel := lipgloss.NewStyle().
		Width(leftWidth).
		Height(m.height).
		Render(strings.Join(left, "\n"))
	rightPanel := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(renderBindings(m.deps.entries(), m.deps.invalid()))

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func renderBindings(entries []shortcut.Entry, invalid []binding.Binding) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Hotkeys") + "\n\n")

	category := ""
	for _, e := range entries {
		if c := e.Action.Category.String(); c != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = c
			b.WriteString(dimStyle.Render(category) + "\n")
		}
		combo := dimStyle.Render("unassigned")
		if e.Bound {
			combo = comboStyle.Render(fmt.Sprintf("%-18s", e.ID.String())) + dimStyle.Render(e.ID.Glyphs())
		}
		fmt.Fprintf(&b, "  %-22s %s\n", e.Action.Name, combo)
	}

	if len(invalid) > 0 {
		b.WriteString("\n" + invalidStyle.Render(fmt.Sprintf("Invalid bindings (%d), press p to purge", len(invalid))) + "\n")
		for _, inv := range invalid {
			id := keyid.New(inv.KeyCode, keyid.Modifier(inv.Modifiers))
			b.WriteString(invalidStyle.Render(fmt.Sprintf("  %-22s %s", inv.ActionName, id)) + "\n")
		}
	}
	return b.String()
}

// renderGrid draws a rows x cols box grid.
func renderGrid(rows, cols int) string {
	const cellW = 5
	seg := strings.Repeat("─", cellW)
	line := func(l, mid, r string) string {
		parts := make([]string, cols)
		for i := range parts {
			parts[i] = seg
		}
		return l + strings.Join(parts, mid) + r
	}
	body := "│" + strings.Repeat(strings.Repeat(" ", cellW)+"│", cols)

	lines := []string{line("┌", "┬", "┐")}
	for r := 0; r < rows; r++ {
		lines = append(lines, body)
		if r < rows-1 {
			lines = append(lines, line("├", "┼", "┤"))
		}
	}
	lines = append(lines, line("└", "┴", "┘"))
	return strings.Join(lines, "\n")
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards display events to the running TUI program.
type tuiSink struct{}

func (tuiSink) OverlayShow(rows, cols int, pinned bool) {
	tuiSend(OverlayShowMsg{Rows: rows, Cols: cols, Pinned: pinned})
}
func (tuiSink) OverlayHide()            { tuiSend(OverlayHideMsg{}) }
func (tuiSink) ActionFired(name string) { tuiSend(ActionMsg{Name: name}) }
func (tuiSink) StatusLine(text string)  { tuiSend(StatusMsg{Text: text}) }
func (tuiSink) BindingsChanged()        { tuiSend(BindingsMsg{}) }
