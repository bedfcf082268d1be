package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	tickInterval    = 50 * time.Millisecond

	primaryDrawSize = 40.0
	minDynamicSize  = 5.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a Simulator at a fixed 50 ms cadence and renders it.
type Model struct {
	sim           *sim.Simulator
	label         string
	width, height int
	canvas        *Canvas
	proj          Projector
	theme         Theme

	running    bool
	filaments  bool
	collisions bool
	slider     int
	showHelp   bool
	frame      int
	status     string

	bodyHistory   []float64
	energyHistory []float64
	merges        int

	// merge flash: a critically damped spring decaying from 1 toward 0
	flash              harmonica.Spring
	flashPos, flashVel float64
	flashAt            []r2.Vec
}

func NewModel(s *sim.Simulator, label string) Model {
	canvas := NewCanvas(width, height)
	return Model{
		sim:           s,
		label:         label,
		width:         width,
		height:        height,
		canvas:        canvas,
		proj:          NewProjector(s.Params().World, canvas),
		theme:         CurrentTheme,
		running:       true,
		filaments:     true,
		collisions:    s.DynamicCollisions(),
		slider:        sim.SliderDefault,
		bodyHistory:   make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		flash:         harmonica.NewSpring(harmonica.FPS(int(time.Second/tickInterval)), 6.0, 1.0),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "c":
			m.collisions = !m.collisions
			m.sim.SetDynamicCollisions(m.collisions)
		case "d":
			m.report(m.sim.AddRandomDynamic(), "dynamic body queued")
		case "p":
			m.report(m.sim.AddRandomPrimary(m.slider), "primary body queued")
		case "f":
			m.filaments = !m.filaments
		case "t":
			m.theme = NextTheme(m.theme)
		case "+", "=", "up", "k":
			m.setSlider(m.slider + 1)
		case "-", "_", "down", "j":
			m.setSlider(m.slider - 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.frame++
		if m.running {
			m.step()
		}
		m.flashPos, m.flashVel = m.flash.Update(m.flashPos, m.flashVel, 0)
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ok
}

func (m *Model) setSlider(v int) {
	m.slider = max(sim.SliderMin, min(sim.SliderMax, v))
	m.report(m.sim.ApplySlider(m.slider), fmt.Sprintf("slider %d", m.slider))
}

// step advances the simulation by one tick.
func (m *Model) step() {
	rep := m.sim.Tick()
	pop := m.sim.Population()

	m.bodyHistory = appendCapped(m.bodyHistory, float64(pop.Len()))
	m.energyHistory = appendCapped(m.energyHistory, pop.KineticEnergy())

	if len(rep.Merges) > 0 {
		m.merges += len(rep.Merges)
		m.flashAt = m.flashAt[:0]
		for _, e := range rep.Merges {
			m.flashAt = append(m.flashAt, e.Position)
		}
		m.flashPos, m.flashVel = 1, 0
		last := rep.Merges[len(rep.Merges)-1]
		m.status = fmt.Sprintf("merge at tick %d, primary mass %.1f", last.Tick, last.PrimaryMass)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the initial population and clears the view history.
func (m *Model) reset() {
	m.sim.Reset()
	m.collisions = m.sim.DynamicCollisions()
	m.slider = sim.SliderDefault
	m.bodyHistory = m.bodyHistory[:0]
	m.energyHistory = m.energyHistory[:0]
	m.merges = 0
	m.flashPos, m.flashVel = 0, 0
	m.flashAt = m.flashAt[:0]
	m.status = "reset"
}

func (m *Model) draw() {
	m.canvas.Clear()
	pop := m.sim.Population()

	if m.filaments {
		for _, b := range pop.Bodies() {
			if b.Kind != dynamo.KindDynamic {
				continue
			}
			target, dist, ok := pop.Nearest(b.Pos, dynamo.KindPrimary)
			if !ok {
				continue
			}
			x0, y0, ok0 := m.proj.Point(b.Pos)
			x1, y1, ok1 := m.proj.Point(target.Pos)
			if ok0 && ok1 {
				m.canvas.DrawLine(x0, y0, x1, y1, HeatLipgloss(dist))
			}
		}
	}

	for _, b := range pop.Bodies() {
		for _, p := range b.Trail {
			if x, y, ok := m.proj.Point(p); ok {
				m.canvas.SetColor(x, y, m.theme.Trail)
			}
		}
	}

	for _, b := range pop.Bodies() {
		x, y, ok := m.proj.Point(b.Pos)
		if !ok {
			continue
		}
		switch {
		case b.Kind == dynamo.KindPrimary:
			m.canvas.DrawDisc(x, y, m.proj.Length(primaryDrawSize/2), m.theme.Primary)
		case b.Transient:
			m.canvas.SetColor(x, y, m.theme.Burst)
		default:
			size := max(minDynamicSize, b.Mass*4)
			m.canvas.DrawDisc(x, y, m.proj.Length(size/2), m.theme.Dynamic)
		}
	}

	if m.flashPos > 0.05 {
		grow := int((1 - m.flashPos) * 8)
		for _, p := range m.flashAt {
			if x, y, ok := m.proj.Point(p); ok {
				m.canvas.DrawRing(x, y, m.proj.Length(primaryDrawSize/2)+1+grow, m.theme.Flash)
			}
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())
	pop := m.sim.Population()

	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText("GRAVITAS", "#00ffff", "#ff00ff")+" "+Subtle.Render(m.label)) + "\n")

	if m.running {
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.frame)+" RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.bodyHistory) > 1 {
		chart := asciigraph.Plot(m.bodyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Bodies"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.sim.TickCount()))
	row("Bodies", fmt.Sprintf("%d (%d primary, %d dynamic)", pop.Len(), pop.Count(dynamo.KindPrimary), pop.Count(dynamo.KindDynamic)))
	row("Mass", fmt.Sprintf("%.1f", pop.TotalMass()))
	row("Merges", MetricValue.Render(fmt.Sprintf("%d", m.merges)))
	s.WriteString(MetricLabel.Render("Kinetic") + Sparkline(m.energyHistory, 20) + "\n")
	s.WriteString(MetricLabel.Render("Mass slider") + SliderBar(m.slider, sim.SliderMin, sim.SliderMax, 15) + fmt.Sprintf(" %d", m.slider) + "\n")
	row("Collisions", onOff(m.collisions))
	row("Filaments", onOff(m.filaments))
	row("Theme", m.theme.Name)
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nD:Dynamic P:Primary C:Collide\n+/-:Mass F:Filaments ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return KeyHint.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  D        - Add random dynamic body  ║
║  P        - Add primary (slider x5)  ║
║  C        - Toggle dynamic collisions║
║  +/-      - Mass slider              ║
║  F        - Toggle filaments         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Run opens the live view in the alternate screen until the user quits.
func Run(s *sim.Simulator, label string) error {
	_, err := tea.NewProgram(NewModel(s, label), tea.WithAltScreen()).Run()
	return err
}
