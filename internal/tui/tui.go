// Package tui is the interactive terminal front end: a bubbletea program
// that acts as the engine's display and notification sink and turns key
// presses into controller intents.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tutu-network/timebank/internal/app/controller"
	"github.com/tutu-network/timebank/internal/app/engine"
	"github.com/tutu-network/timebank/internal/domain"
)

// bonusCheckInterval is how often a long-running session looks for a due
// login bonus.
const bonusCheckInterval = time.Minute

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	displayStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 4).
			MarginBottom(1)

	earningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	usingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	focusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2"))
)

// ─── Sink ───────────────────────────────────────────────────────────────────

type frameMsg struct {
	text string
	mode domain.Mode
}

type noticeMsg string

type bonusCheckMsg time.Time

// Sink receives engine output and queues it for the program. It never
// blocks the engine: when the queue is full the update is dropped, and the
// next tick renders a fresh value anyway.
type Sink struct {
	ch chan tea.Msg
}

// NewSink creates a sink with a small buffer.
func NewSink() *Sink {
	return &Sink{ch: make(chan tea.Msg, 64)}
}

// Show implements domain.Display.
func (s *Sink) Show(text string, mode domain.Mode) {
	select {
	case s.ch <- frameMsg{text: text, mode: mode}:
	default:
	}
}

// Notify implements domain.Notifier.
func (s *Sink) Notify(msg string) {
	select {
	case s.ch <- noticeMsg(msg):
	default:
	}
}

// wait returns a command that delivers the next queued message.
func (s *Sink) wait() tea.Cmd {
	return func() tea.Msg { return <-s.ch }
}

// ─── Model ──────────────────────────────────────────────────────────────────

// Model is the bubbletea model.
type Model struct {
	engine *engine.Engine
	sink   *Sink

	display string
	mode    domain.Mode
	notice  string

	editing    bool
	confirming bool
	fields     [3]string // hours, minutes, seconds
	focus      int
	width      int
}

// NewModel creates a model bound to e. The caller wires sink into e.
func NewModel(e *engine.Engine, sink *Sink) Model {
	return Model{
		engine:  e,
		sink:    sink,
		display: "00:00:00",
		mode:    domain.ModeStopped,
	}
}

func bonusTick() tea.Cmd {
	return tea.Tick(bonusCheckInterval, func(t time.Time) tea.Msg {
		return bonusCheckMsg(t)
	})
}

// Init starts listening to the sink and schedules bonus checks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sink.wait(), bonusTick())
}

// Update handles key presses and engine output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case frameMsg:
		m.display, m.mode = msg.text, msg.mode
		return m, m.sink.wait()
	case noticeMsg:
		m.notice = string(msg)
		return m, m.sink.wait()
	case bonusCheckMsg:
		m.engine.ClaimBonusIfDue()
		return m, bonusTick()
	case tea.KeyMsg:
		switch {
		case m.confirming:
			return m.updateConfirm(msg)
		case m.editing:
			return m.updateForm(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) controller(confirmed bool) *controller.Controller {
	return controller.New(m.engine, controller.AutoConfirm(confirmed))
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "e":
		m.controller(false).OnEarnClicked()
	case "u":
		m.controller(false).OnUseClicked()
	case "s":
		m.controller(false).OnStopClicked()
	case "t":
		m.editing = true
		m.focus = 0
	case "x":
		m.notice = ""
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyTab, tea.KeyRight:
		m.focus = (m.focus + 1) % len(m.fields)
	case tea.KeyShiftTab, tea.KeyLeft:
		m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
	case tea.KeyBackspace:
		if f := m.fields[m.focus]; f != "" {
			m.fields[m.focus] = f[:len(f)-1]
		}
	case tea.KeyEnter:
		m.confirming = true
	case tea.KeyRunes:
		// Any text is accepted; the controller coerces non-numbers to zero.
		m.fields[m.focus] += string(msg.Runes)
	}
	return m, nil
}

// updateConfirm answers the confirmation gate for the manual override.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.controller(true).OnUpdateClicked(m.fields[0], m.fields[1], m.fields[2])
		m.fields = [3]string{}
		m.editing = false
		m.confirming = false
	case "n", "esc":
		m.confirming = false
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("⏳ Time Bank"))
	b.WriteString("\n\n")
	b.WriteString(displayStyle.Render(m.display))
	b.WriteString("\n")
	b.WriteString(modeLine(m.mode))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render("🎁 " + m.notice))
		b.WriteString(idleStyle.Render("  (x to dismiss)"))
		b.WriteString("\n\n")
	}

	switch {
	case m.confirming:
		b.WriteString(noticeStyle.Render(controller.UpdatePrompt + " (y/n)"))
	case m.editing:
		b.WriteString(m.formView())
		b.WriteString("\n")
		b.WriteString(idleStyle.Render("tab: next field • enter: apply • esc: cancel"))
	default:
		b.WriteString(idleStyle.Render("e: earn • u: use • s: stop • t: set time • q: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) formView() string {
	labels := [3]string{"h", "m", "s"}
	parts := make([]string, len(m.fields))
	for i, f := range m.fields {
		cell := fmt.Sprintf("[%2s]%s", f, labels[i])
		if i == m.focus {
			cell = focusStyle.Render(cell)
		}
		parts[i] = cell
	}
	return "Set time: " + strings.Join(parts, " ")
}

// modeLine shows the two intent buttons the way the mode labels them.
func modeLine(mode domain.Mode) string {
	earn, use := idleStyle.Render("Earn"), idleStyle.Render("Use")
	switch mode {
	case domain.ModeEarning:
		earn = earningStyle.Render(mode.Label())
	case domain.ModeUsing:
		use = usingStyle.Render(mode.Label())
	}
	return earn + "   " + use
}

// ─── Program ────────────────────────────────────────────────────────────────

// Run wires a sink into e, opens it and runs the program until the user
// quits. The schedule is cancelled on exit; the record stays persisted.
func Run(e *engine.Engine) error {
	sink := NewSink()
	e.SetDisplay(sink)
	e.SetNotifier(sink)
	e.Open()
	defer e.Close()

	p := tea.NewProgram(NewModel(e, sink), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
