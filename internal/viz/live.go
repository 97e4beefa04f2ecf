package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/labs"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
)

type TickMsg time.Time

// backMsg asks the menu to take over again.
type backMsg struct{}

// Model runs one lab live: every tick feeds one frame of wall time to the driver.
type Model struct {
	lab      labs.Lab
	driver   *dynamo.Driver
	frame    time.Duration
	canvas   *Canvas
	history  []float64
	selected int
	err      error
	showHelp bool
	embedded bool

	lastEvent string
}

func NewModel(name string, cfg *config.Config) (Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	l, err := labs.New(name, cfg)
	if err != nil {
		return Model{}, err
	}
	d := cfg.Driver.NewDriver()
	if err := d.Validate(); err != nil {
		return Model{}, err
	}
	return Model{
		lab:     l,
		driver:  d,
		frame:   time.Duration(cfg.Driver.Frame() * float64(time.Second)),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		history: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the lab.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.embedded {
				return m, func() tea.Msg { return backMsg{} }
			}
			return m, tea.Quit
		case " ":
			m.err = m.lab.Action()
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.lab.Params())
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.step()
		for _, e := range m.lab.Poll() {
			m.lastEvent = e.String()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if !m.lab.Running() {
		return
	}
	if _, err := m.driver.Frame(m.lab.Model(), m.frame.Seconds()); err != nil {
		m.err = err
		return
	}
	v, _ := m.lab.Sample()
	m.history = append(m.history, v)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) adjustParam(dir float64) {
	p := m.lab.Params()[m.selected]
	m.err = m.lab.SetParam(p.Name, m.lab.Param(p.Name)+dir*p.Step)
}

func (m *Model) reset() {
	m.lab.Reset()
	m.driver.Reset()
	m.history = m.history[:0]
	m.err = nil
	m.lastEvent = ""
}

func (m Model) status() string {
	switch {
	case m.lab.Running():
		return statusRunning.Render("RUNNING")
	case m.lab.Model().Done():
		return statusDone.Render("DONE")
	}
	return statusIdle.Render("READY · space: " + m.lab.ActionHint())
}

// View renders the lab and its readouts side by side.
func (m Model) View() string {
	m.canvas.Clear()
	m.lab.Draw(&surface{c: m.canvas})
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.lab.Name())) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.history) > 1 {
		_, caption := m.lab.Sample()
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption(caption))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	for _, st := range m.lab.Stats() {
		value := valueStyle.Render(st.Value)
		if band, ok := statusBand[st.Value]; ok && st.Label == "Status" {
			value = band.Render(st.Value)
		}
		s.WriteString(labelStyle.Render(st.Label) + value + "\n")
	}
	if m.lastEvent != "" {
		s.WriteString(labelStyle.Render("Last event") + valueStyle.Render(m.lastEvent) + "\n")
	}
	if d := m.driver.Dropped(); d > 0 {
		s.WriteString(labelStyle.Render("Dropped") + valueStyle.Render(fmt.Sprintf("%.3fs", d)) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, p := range m.lab.Params() {
		line := fmt.Sprintf("%-16s %8.3f", p.Name, m.lab.Param(p.Name))
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + dimStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Action R:Reset Q:Quit\nTab:Param ↑↓:Tune ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space  - Release / launch / phase   ║
║  R      - Reset the lab              ║
║  Tab    - Cycle parameters           ║
║  Up/K   - Increase parameter         ║
║  Down/J - Decrease parameter         ║
║  Esc    - Back to the lab menu       ║
║  Q      - Quit                       ║
║  ?      - Toggle this help           ║
╚══════════════════════════════════════╝`
