package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravitas/internal/config"
	"github.com/san-kum/gravitas/internal/sim"
)

var presetInfo = map[string]string{
	"default":    "three seeded primaries",
	"binary":     "two heavy primaries",
	"crowded":    "150 light dynamics",
	"collisions": "dynamic collisions on",
	"scattered":  "random primaries",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// tunables are the fields editable before a run starts, in display order.
var tunables = []struct {
	name  string
	step  float64
	get   func(*config.Config) float64
	apply func(*config.Config, float64)
}{
	{"seed", 1,
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"dynamics", 5,
		func(c *config.Config) float64 { return float64(c.Bodies.Dynamics) },
		func(c *config.Config, v float64) { c.Bodies.Dynamics = max(0, int(v)) }},
	{"g", 0.1,
		func(c *config.Config) float64 { return c.Physics.G },
		func(c *config.Config, v float64) { c.Physics.G = v }},
	{"proximity", 1,
		func(c *config.Config) float64 { return c.Physics.ProximityThreshold },
		func(c *config.Config, v float64) { c.Physics.ProximityThreshold = v }},
	{"merge_ticks", 5,
		func(c *config.Config) float64 { return float64(c.Physics.MergeTicks) },
		func(c *config.Config, v float64) { c.Physics.MergeTicks = int(v) }},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func NewInteractiveApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		cfg, err := config.GetPreset(m.selected)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.cfg, m.err = cfg, nil
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	t := tunables[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				t.apply(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(tunables)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", t.get(m.cfg))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		t.apply(m.cfg, t.get(m.cfg)-t.step)
	case "right", "l":
		t.apply(m.cfg, t.get(m.cfg)+t.step)
	}
	return m, nil
}

// start validates the edited config and hands over to the live view.
func (m *model) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	s, err := sim.New(m.cfg.Params(), m.cfg.Setup())
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.liveModel = NewModel(s, m.selected)
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) header(title, sub string) string {
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	return "\n\n    " + h.Render(title) + "\n    " + Subtle.Render(sub) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.header("GRAVITAS", "primary and dynamic body gravity"))
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", name)), Subtle.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString(m.header(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, t := range tunables {
		valStr := fmt.Sprintf("%8g", t.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", t.name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", t.name)), Subtle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
