package viz

import (
	"image/color"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/sim"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Fatal("expected dot to be set")
	}
	if c.Grid[1][1] != blank|0x10 {
		t.Errorf("unexpected cell rune %U", c.Grid[1][1])
	}

	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != blank {
		t.Error("expected dot to be cleared")
	}

	// off-canvas writes are ignored
	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatal("off-canvas write leaked into the grid")
			}
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 0, "#ff0000")

	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("expected dot at x=%d", x)
		}
	}
	if c.Colors[0][9] != "#ff0000" {
		t.Error("line should colour the cells it passes through")
	}
}

func TestCanvasDiscAndRing(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawDisc(20, 20, 3, "#ffffff")

	if !c.IsSet(20, 20) || !c.IsSet(23, 20) || !c.IsSet(20, 17) {
		t.Error("disc should cover its centre and radius")
	}
	if c.IsSet(23, 23) {
		t.Error("disc should not cover the bounding-box corner")
	}

	c.Clear()
	c.DrawRing(20, 20, 5, "#ffffff")
	if c.IsSet(20, 20) {
		t.Error("ring should leave its centre empty")
	}
	if !c.IsSet(25, 20) || !c.IsSet(20, 15) {
		t.Error("ring should pass through its cardinal points")
	}

	c.Clear()
	c.DrawDisc(4, 4, 0, "#ffffff")
	if !c.IsSet(4, 4) {
		t.Error("zero radius disc should light one dot")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	out := c.String()
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 rows, got %q", out)
	}
	if !strings.Contains(out, string(rune(blank))) {
		t.Error("expected blank braille cells")
	}
}

func TestHeatColor(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     color.RGBA
	}{
		{"touching", 0, color.RGBA{R: 255, G: 0, B: 0, A: 255}},
		{"near band", 40, color.RGBA{R: 255, G: 76, B: 76, A: 255}},
		{"middle band", 200, color.RGBA{R: 255, G: 0, B: 130, A: 255}},
		{"far band", 300, color.RGBA{R: 191, G: 0, B: 255, A: 255}},
		{"beyond max", 1000, color.RGBA{R: 0, G: 0, B: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeatColor(tt.distance); got != tt.want {
				t.Errorf("HeatColor(%v) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func TestHeatColor_NearBandClamps(t *testing.T) {
	// just inside the near band the green and blue terms exceed 255
	c := HeatColor(HeatMaxDistance * 0.3399)
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("expected clamped white, got %v", c)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{R: 255, G: 10, B: 0}); got != "#ff0a00" {
		t.Errorf("expected #ff0a00, got %s", got)
	}
	r, g, b := parseHex("#ff0a00")
	if r != 255 || g != 10 || b != 0 {
		t.Errorf("parseHex round trip failed: %d %d %d", r, g, b)
	}
	if r, _, _ := parseHex("bogus"); r != 255 {
		t.Error("invalid hex should fall back to white")
	}
}

func TestProjector(t *testing.T) {
	c := NewCanvas(80, 24)
	p := NewProjector(r2.Vec{X: 800, Y: 600}, c)

	x, y, ok := p.Point(r2.Vec{X: 400, Y: 300})
	if !ok || x != 80 || y != 48 {
		t.Errorf("centre projected to (%d, %d, %v)", x, y, ok)
	}
	if _, _, ok := p.Point(r2.Vec{X: math.NaN(), Y: 1}); ok {
		t.Error("NaN positions should not project")
	}
	if _, _, ok := p.Point(r2.Vec{X: math.Inf(1), Y: 1}); ok {
		t.Error("infinite positions should not project")
	}
	if got := p.Length(20); got != 4 {
		t.Errorf("expected 4 dots, got %d", got)
	}
}

func TestSparklineAndSlider(t *testing.T) {
	if s := Sparkline(nil, 5); !strings.Contains(s, "─────") {
		t.Errorf("empty sparkline should be flat, got %q", s)
	}
	s := Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 4)
	if n := strings.Count(s, "▁") + strings.Count(s, "█") + strings.Count(s, "▃") + strings.Count(s, "▅"); n != 4 {
		t.Errorf("expected 4 glyphs from the tail window, got %q", s)
	}
	if bar := SliderBar(100, 1, 100, 10); strings.Count(bar, "█") != 10 {
		t.Errorf("full slider should be filled, got %q", bar)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != ThemeNebula.Name {
		t.Error("unknown theme should fall back to nebula")
	}
	seen := map[string]bool{}
	th := ThemeNebula
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != ThemeNebula.Name {
		t.Error("NextTheme should cycle through every theme")
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	s, err := sim.New(dynamo.DefaultParams(), sim.DefaultSetup())
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	return NewModel(s, "test")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTick(t *testing.T) {
	m := newTestModel(t)

	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if m.sim.TickCount() != 2 || len(m.bodyHistory) != 2 {
		t.Errorf("expected 2 ticks, got %d", m.sim.TickCount())
	}

	m = update(m, key(" "))
	m = update(m, TickMsg{})
	if m.sim.TickCount() != 2 {
		t.Error("paused model should not tick")
	}

	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should report the paused state")
	}
}

func TestModelRequests(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("d"))
	m = update(m, key("p"))
	m = update(m, key("c"))
	if m.sim.Pending() != 3 {
		t.Fatalf("expected 3 queued requests, got %d", m.sim.Pending())
	}

	before := m.sim.Population().Len()
	m = update(m, TickMsg{})
	if m.sim.Population().Len() != before+2 {
		t.Error("queued bodies should join on the next tick")
	}
	if m.sim.Population().Count(dynamo.KindPrimary) != 4 {
		t.Errorf("expected 4 primaries, got %d", m.sim.Population().Count(dynamo.KindPrimary))
	}
	if !m.sim.DynamicCollisions() {
		t.Error("collision toggle should apply on the next tick")
	}
}

func TestModelSlider(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("+"))
	if m.slider != sim.SliderDefault+1 {
		t.Errorf("expected slider %d, got %d", sim.SliderDefault+1, m.slider)
	}
	m = update(m, TickMsg{})
	for _, b := range m.sim.Population().Bodies() {
		if b.Kind == dynamo.KindPrimary && b.Mass != 22 {
			t.Errorf("expected primary mass 22, got %v", b.Mass)
		}
	}

	for i := 0; i < 50; i++ {
		m = update(m, key("-"))
	}
	if m.slider != sim.SliderMin {
		t.Errorf("slider should clamp at %d, got %d", sim.SliderMin, m.slider)
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg{})
	}
	m = update(m, key("r"))

	if m.sim.TickCount() != 0 || len(m.bodyHistory) != 0 || m.merges != 0 {
		t.Error("reset should clear the run")
	}
}

func TestModelDrawSkipsNonFinite(t *testing.T) {
	m := newTestModel(t)
	m.sim.Population().At(5).Pos = r2.Vec{X: math.NaN(), Y: math.NaN()}

	m.draw()
	if out := m.canvas.String(); out == "" {
		t.Error("expected a rendered canvas")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestInteractivePicker(t *testing.T) {
	var m tea.Model = *NewInteractiveApp()
	press := func(s string) {
		m, _ = m.Update(key(s))
	}

	press("j")
	press("enter")
	pick := m.(model)
	if pick.state != stateConfig || pick.selected != pick.presets[1] {
		t.Fatalf("expected config screen for %s, got state %d", pick.presets[1], pick.state)
	}

	press("l")
	if m.(model).cfg.Seed != 1 {
		t.Errorf("expected seed 1, got %d", m.(model).cfg.Seed)
	}

	press("s")
	if m.(model).state != stateSim {
		t.Fatalf("expected live view, got state %d", m.(model).state)
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("live view should start running")
	}
}

func TestInteractivePicker_InvalidEdit(t *testing.T) {
	var m tea.Model = *NewInteractiveApp()
	m, _ = m.Update(key("enter"))

	// proximity threshold down to zero fails validation
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("j"))
	}
	for i := 0; i < 25; i++ {
		m, _ = m.Update(key("h"))
	}
	m, _ = m.Update(key("s"))

	if m.(model).state != stateConfig || m.(model).err == nil {
		t.Error("invalid config should keep the picker open with an error")
	}
}
