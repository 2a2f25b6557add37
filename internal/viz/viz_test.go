package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.PixelSize(); w != 8 || h != 8 {
		t.Fatalf("pixel size = %dx%d", w, h)
	}

	c.Set(1, 5)
	if !c.IsSet(1, 5) || c.IsSet(0, 5) {
		t.Error("Set lit the wrong pixel")
	}
	c.Set(-1, 3)
	c.Set(100, 100)

	c.DrawLine(0, 0, 7, 0)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("line pixel %d not set", x)
		}
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Errorf("canvas not cleared: %q", c.String())
	}
}

func TestCameraProjectsCentre(t *testing.T) {
	cam := NewCamera()
	cam.RotX, cam.RotY = 0, 0
	cam.Fit([]dynamo.Point{
		{Position: r3.Vec{X: -1, Y: -1}},
		{Position: r3.Vec{X: 1, Y: 1}},
	})

	x, y, ok := cam.Project(r3.Vec{}, 100, 80)
	if !ok || x != 50 || y != 40 {
		t.Errorf("centre projected to (%d,%d,%v)", x, y, ok)
	}

	xr, _, _ := cam.Project(r3.Vec{X: 1}, 100, 80)
	_, yu, _ := cam.Project(r3.Vec{Y: 1}, 100, 80)
	if xr <= x || yu >= y {
		t.Errorf("axes flipped: right=%d up=%d", xr, yu)
	}
}

func TestRenderDrawsScene(t *testing.T) {
	sc, _ := scenes.Get("cloth")
	s, err := sim.New(sc)
	if err != nil {
		t.Fatal(err)
	}
	cv := NewCanvas(40, 20)
	cam := NewCamera()
	cam.Fit(s.Snapshot())
	Render(cv, cam, s.Snapshot(), s.Springs())

	lit := 0
	for _, row := range cv.Grid {
		for _, r := range row {
			if r != blank {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("nothing rendered")
	}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLive(t *testing.T, name string) Model {
	t.Helper()
	sc, err := scenes.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.New(sc)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, sc.DefaultDt)
}

func press(m Model, k string) Model {
	next, _ := m.Update(keys(k))
	return next.(Model)
}

func TestModelSingleStep(t *testing.T) {
	m := newLive(t, "one-step")
	if m.running {
		t.Fatal("single step scenario should start paused")
	}

	m = press(m, " ")
	if m.sim.Steps() != 1 {
		t.Fatalf("steps = %d, want 1", m.sim.Steps())
	}
	if !strings.Contains(m.dump, "p0 x(t) = (-0.1000, 0.0400, 0.0000)") {
		t.Errorf("unexpected dump:\n%s", m.dump)
	}

	next, _ := m.Update(TickMsg{})
	if next.(Model).sim.Steps() != 1 {
		t.Error("tick advanced a paused single step scenario")
	}
}

func TestModelKeys(t *testing.T) {
	m := newLive(t, "cloth")
	p := m.sim.Params()

	m = press(m, "g")
	m = press(m, "w")
	m = press(m, "k")
	got := m.sim.Params()
	if got.Gravity <= p.Gravity || got.Wind <= p.Wind || got.Stiffness <= p.Stiffness {
		t.Errorf("params not raised: %+v -> %+v", p, got)
	}

	m = press(m, "i")
	if m.sim.Integrator() != dynamo.Leapfrog {
		t.Errorf("integrator = %v", m.sim.Integrator())
	}
	if !strings.Contains(m.View(), "leapfrog (priming)") {
		t.Error("view does not show leapfrog priming")
	}

	m = press(m, "n")
	if m.running || m.sim.Steps() != 1 {
		t.Errorf("n: running=%v steps=%d", m.running, m.sim.Steps())
	}

	m = press(m, "r")
	if m.sim.Steps() != 0 || m.sim.Params().Gravity != got.Gravity {
		t.Errorf("reset: steps=%d params=%+v", m.sim.Steps(), m.sim.Params())
	}
}

func TestModelClampsTweaks(t *testing.T) {
	m := newLive(t, "simple")
	for i := 0; i < 100; i++ {
		m = press(m, "K")
		m = press(m, "G")
		m = press(m, "W")
	}
	p := m.sim.Params()
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if p.Stiffness != minStiffness || p.Gravity != 0 || p.Wind != 0 {
		t.Errorf("lower limits: %+v", p)
	}

	for i := 0; i < 200; i++ {
		m = press(m, "g")
	}
	if got := m.sim.Params().Gravity; got != maxGravity {
		t.Errorf("gravity = %v, want %v", got, maxGravity)
	}
}

func TestModelTickAdvances(t *testing.T) {
	m := newLive(t, "simple")
	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick did not schedule the next frame")
	}
	if got := next.(Model).sim.Steps(); got != m.stepsPerFrame {
		t.Errorf("steps after tick = %d, want %d", got, m.stepsPerFrame)
	}
}

func TestMenuStartsLiveView(t *testing.T) {
	var m tea.Model = NewMenu()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	menu := m.(Menu)
	if menu.live == nil {
		t.Fatalf("live view not started: %v", menu.err)
	}
	if menu.live.sim.Scenario().Name != "cloth" {
		t.Errorf("scenario = %s", menu.live.sim.Scenario().Name)
	}
}
