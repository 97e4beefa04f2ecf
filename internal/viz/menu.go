package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/physlab/internal/config"
)

var labInfo = map[string]string{
	"pendulum":    "physical pendulum, measure g from periods",
	"airtable":    "puck on an incline, sparks and bounces",
	"centripetal": "spring, cylinder and swinging bob",
}

const (
	stateMenu = iota
	stateLab
)

// Menu lists the labs and runs the chosen one in place.
type Menu struct {
	state  int
	cursor int
	labs   []string
	cfg    *config.Config
	live   Model
	err    error
}

func NewMenu(cfg *config.Config) Menu {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Menu{labs: config.Labs(), cfg: cfg}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(backMsg); ok {
		m.state = stateMenu
		return m, nil
	}
	if m.state == stateLab {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.labs)-1 {
			m.cursor++
		}
	case "enter", " ":
		live, err := NewModel(m.labs[m.cursor], m.cfg)
		if err != nil {
			m.err = err
			return m, nil
		}
		live.embedded = true
		m.live, m.state, m.err = live, stateLab, nil
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.state == stateLab {
		return m.live.View()
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("PHYSLAB") + "\n")
	for i, name := range m.labs {
		line := name + "  " + dimStyle.Render(labInfo[name])
		if i == m.cursor {
			s.WriteString(cursorStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Open Q:Quit"))
	return s.String()
}

// Run starts the menu, or a single lab when name is set.
func Run(name string, cfg *config.Config) error {
	var model tea.Model = NewMenu(cfg)
	if name != "" {
		live, err := NewModel(name, cfg)
		if err != nil {
			return err
		}
		model = live
	}
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
