package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/integrators"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
	frameRate       = 30
	maxSteps        = 50
	minDt           = 1e-6

	// tweak limits for the parameter keys
	maxGravity   = 10.0
	minStiffness = 10.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a Simulator from the terminal. All mutation happens between
// steps in Update.
type Model struct {
	sim           *sim.Simulator
	dt            float64
	stepsPerFrame int
	canvas        *Canvas
	camera        *Camera
	running       bool
	theme         Theme
	styles        Styles
	energy        []float64
	dump          string
	err           error
	showHelp      bool
}

// NewModel wraps s. Single-step scenarios start paused and advance one step
// per key press.
func NewModel(s *sim.Simulator, dt float64) Model {
	if !(dt > minDt) {
		dt = s.Scenario().DefaultDt
	}
	if !(dt > minDt) {
		dt = dynamo.DefaultConfig().Dt
	}
	steps := int(math.Round(1.0 / frameRate / dt))
	m := Model{
		sim:           s,
		dt:            dt,
		stepsPerFrame: min(max(steps, 1), maxSteps),
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		running:       !s.Scenario().SingleStep,
		theme:         Themes[0],
		styles:        NewStyles(Themes[0]),
		energy:        make([]float64, 0, historyCapacity),
	}
	m.camera.Fit(s.Snapshot())
	m.recordEnergy()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.sim.Params()
	set := func(err error) { m.err = err }

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.sim.Scenario().SingleStep {
			m.stepOnce()
		} else {
			m.running = !m.running
		}
	case "n":
		m.running = false
		m.stepOnce()
	case "r":
		err := m.sim.Reset()
		set(err)
		if err == nil {
			m.energy = m.energy[:0]
			m.dump = ""
			m.camera.Fit(m.sim.Snapshot())
			m.recordEnergy()
		}
	case "i":
		kinds := dynamo.IntegratorKinds()
		set(m.sim.SetIntegrator(kinds[(int(m.sim.Integrator())+1)%len(kinds)]))
	case "g":
		set(m.sim.SetGravity(min(p.Gravity+0.1, maxGravity)))
	case "G":
		set(m.sim.SetGravity(max(p.Gravity-0.1, 0)))
	case "w":
		set(m.sim.SetWind(p.Wind + 0.5))
	case "W":
		set(m.sim.SetWind(max(p.Wind-0.5, 0)))
	case "k":
		set(m.sim.SetStiffness(p.Stiffness * 1.1))
	case "K":
		set(m.sim.SetStiffness(max(p.Stiffness/1.1, minStiffness)))
	case "s":
		set(m.nextScenario())
	case "left":
		m.camera.RotateY(-0.1)
	case "right":
		m.camera.RotateY(0.1)
	case "up":
		m.camera.RotateX(-0.1)
	case "down":
		m.camera.RotateX(0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) nextScenario() error {
	names := scenes.Names()
	next := names[0]
	for i, name := range names {
		if name == m.sim.Scenario().Name {
			next = names[(i+1)%len(names)]
		}
	}
	sc, err := scenes.Get(next)
	if err != nil {
		return err
	}
	if err := m.sim.Load(sc); err != nil {
		return err
	}
	m.dt = sc.DefaultDt
	m.stepsPerFrame = min(max(int(math.Round(1.0/frameRate/m.dt)), 1), maxSteps)
	m.running = !sc.SingleStep
	m.energy = m.energy[:0]
	m.dump = ""
	m.camera.Fit(m.sim.Snapshot())
	m.recordEnergy()
	return nil
}

func (m *Model) stepOnce() {
	if m.advance(1) {
		m.dump = PointDump(m.sim)
	}
}

// advance runs n steps and pauses on the first failure.
func (m *Model) advance(n int) bool {
	for i := 0; i < n; i++ {
		if err := m.sim.Advance(m.dt); err != nil {
			m.err = err
			m.running = false
			return false
		}
	}
	m.recordEnergy()
	return true
}

func (m *Model) recordEnergy() {
	k, e, g := m.sim.Energy()
	m.energy = append(m.energy, k+e+g)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// PointDump lists x(t) and v(t) for every point.
func PointDump(s *sim.Simulator) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t = %.4f\n", s.Time())
	for i, p := range s.Snapshot() {
		fmt.Fprintf(&b, "p%d x(t) = (%.4f, %.4f, %.4f)  v(t) = (%.4f, %.4f, %.4f)\n",
			i, p.Position.X, p.Position.Y, p.Position.Z, p.Velocity.X, p.Velocity.Y, p.Velocity.Z)
	}
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.err != nil && errors.Is(m.err, dynamo.ErrInvalidState):
		return m.styles.Error.Render("DIVERGED")
	case m.sim.Scenario().SingleStep:
		return m.styles.Paused.Render("SINGLE STEP")
	case m.running:
		return m.styles.Running.Render("RUNNING")
	}
	return m.styles.Paused.Render("PAUSED")
}

func (m Model) integratorLabel() string {
	kind := m.sim.Integrator()
	if kind == dynamo.Leapfrog && m.sim.LeapfrogPhase() == integrators.Priming {
		return kind.String() + " (priming)"
	}
	return kind.String()
}

func (m Model) View() string {
	m.canvas.Clear()
	if m.sim.Features().Collision {
		RenderFloor(m.canvas, m.camera, m.sim.Params().FloorHeight)
	}
	Render(m.canvas, m.camera, m.sim.Snapshot(), m.sim.Springs())
	canvasView := m.styles.Canvas.Render(m.canvas.String())

	st := m.styles
	p := m.sim.Params()
	row := func(label, value string) string {
		return st.Label.Render(label) + st.Value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.sim.Scenario().Name)) + "\n")
	s.WriteString(m.status() + "\n")
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}
	s.WriteString(row("Time", fmt.Sprintf("%.3fs", m.sim.Time())))
	s.WriteString(row("Steps", fmt.Sprintf("%d (dt %.4g)", m.sim.Steps(), m.dt)))
	s.WriteString(row("Integrator", m.integratorLabel()))
	s.WriteString(row("Points", fmt.Sprintf("%d / %d springs", m.sim.PointCount(), m.sim.SpringCount())))
	s.WriteString("\n" + st.Active.Render("PARAMETERS") + "\n")
	s.WriteString(row("Mass", fmt.Sprintf("%.3f", p.Mass)))
	s.WriteString(row("Stiffness", fmt.Sprintf("%.3f", p.Stiffness)))
	if m.sim.Features().ExternalForces {
		s.WriteString(row("Gravity", fmt.Sprintf("%.3f", p.Gravity)))
		s.WriteString(row("Wind", fmt.Sprintf("%.3f", p.Wind)))
	}
	if m.sim.Features().Collision {
		s.WriteString(row("Floor", fmt.Sprintf("%.3f", p.FloorHeight)))
	}
	if m.dump != "" {
		s.WriteString("\n" + st.Value.Render(m.dump))
	}
	if m.err != nil {
		s.WriteString("\n" + st.Error.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.Help.Render("SP:Pause N:Step R:Reset I:Integrator\ng/G:Gravity w/W:Wind k/K:Stiffness\nS:Scenario T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space     pause / resume (single step scenarios: one step)
  n         advance one step
  r         rebuild the scene, re-prime leapfrog
  i         cycle integrator: euler, leapfrog, midpoint
  g / G     gravity +/- 0.1 (0 to 10)
  w / W     wind +/- 0.5 (at least 0)
  k / K     stiffness x/÷ 1.1 (at least 10)
  s         next scenario
  arrows    rotate view, +/- zoom
  t         cycle theme
  q         quit
`

// RunLive runs the live view until the user quits.
func RunLive(s *sim.Simulator, dt float64) error {
	_, err := tea.NewProgram(NewModel(s, dt), tea.WithAltScreen()).Run()
	return err
}
