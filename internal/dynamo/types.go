package dynamo

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMass        = 10.0
	DefaultStiffness   = 40.0
	DefaultFloorHeight = -0.9
)

type Point struct {
	Position r3.Vec
	Velocity r3.Vec
	Fixed    bool
}

type Spring struct {
	P1         int     `json:"p1"`
	P2         int     `json:"p2"`
	RestLength float64 `json:"rest_length"`
}

// Scene holds the points and springs of one simulation. Topology is
// append-only until Clear.
type Scene struct {
	Points  []Point
	Springs []Spring
}

// AddPoint appends a point and returns its index.
func (s *Scene) AddPoint(position, velocity r3.Vec, fixed bool) int {
	s.Points = append(s.Points, Point{Position: position, Velocity: velocity, Fixed: fixed})
	return len(s.Points) - 1
}

// AddSpring appends a spring between two existing, distinct points.
func (s *Scene) AddSpring(p1, p2 int, restLength float64) error {
	n := len(s.Points)
	if p1 < 0 || p1 >= n {
		return IndexError("point", p1, n)
	}
	if p2 < 0 || p2 >= n {
		return IndexError("point", p2, n)
	}
	if p1 == p2 {
		return fmt.Errorf("%w: spring endpoints must differ (both %d)", ErrParameterBounds, p1)
	}
	if !(restLength > 0) || math.IsInf(restLength, 0) {
		return BoundsError("rest length", restLength)
	}
	s.Springs = append(s.Springs, Spring{P1: p1, P2: p2, RestLength: restLength})
	return nil
}

func (s *Scene) Clear() {
	s.Points = s.Points[:0]
	s.Springs = s.Springs[:0]
}

func (s *Scene) Clone() *Scene {
	c := &Scene{
		Points:  make([]Point, len(s.Points)),
		Springs: make([]Spring, len(s.Springs)),
	}
	copy(c.Points, s.Points)
	copy(c.Springs, s.Springs)
	return c
}

// Validate checks spring indices and rest lengths against the current points.
func (s *Scene) Validate() error {
	n := len(s.Points)
	for i, sp := range s.Springs {
		for _, idx := range [2]int{sp.P1, sp.P2} {
			if idx < 0 || idx >= n {
				return fmt.Errorf("spring %d: %w", i, IndexError("point", idx, n))
			}
		}
		if sp.P1 == sp.P2 || !(sp.RestLength > 0) {
			return fmt.Errorf("spring %d: %w", i, ErrParameterBounds)
		}
	}
	return CheckFinite(s.Points)
}

// CheckFinite returns ErrInvalidState if any coordinate is NaN or Inf.
func CheckFinite(points []Point) error {
	for i := range points {
		p := &points[i]
		if !finite(p.Position) || !finite(p.Velocity) {
			return fmt.Errorf("%w: point %d", ErrInvalidState, i)
		}
	}
	return nil
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Params are shared by every point and spring. They change only between steps.
type Params struct {
	Mass        float64 `yaml:"mass" json:"mass"`
	Stiffness   float64 `yaml:"stiffness" json:"stiffness"`
	Damping     float64 `yaml:"damping" json:"damping"` // reserved, not used by the force model
	Gravity     float64 `yaml:"gravity" json:"gravity"`
	Wind        float64 `yaml:"wind" json:"wind"`
	FloorHeight float64 `yaml:"floor_height" json:"floor_height"`
}

func DefaultParams() Params {
	return Params{
		Mass:        DefaultMass,
		Stiffness:   DefaultStiffness,
		FloorHeight: DefaultFloorHeight,
	}
}

// UnmarshalYAML sets only the fields present in the node. Decoding into a
// zero Params starts from DefaultParams, so a partial block such as
// {gravity: 1} keeps a valid mass and stiffness.
func (p *Params) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Mass        *float64 `yaml:"mass"`
		Stiffness   *float64 `yaml:"stiffness"`
		Damping     *float64 `yaml:"damping"`
		Gravity     *float64 `yaml:"gravity"`
		Wind        *float64 `yaml:"wind"`
		FloorHeight *float64 `yaml:"floor_height"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if *p == (Params{}) {
		*p = DefaultParams()
	}
	for _, f := range []struct {
		src *float64
		dst *float64
	}{
		{raw.Mass, &p.Mass},
		{raw.Stiffness, &p.Stiffness},
		{raw.Damping, &p.Damping},
		{raw.Gravity, &p.Gravity},
		{raw.Wind, &p.Wind},
		{raw.FloorHeight, &p.FloorHeight},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return nil
}

func (p Params) Validate() error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return BoundsError("mass", p.Mass)
	}
	if !(p.Stiffness > 0) || math.IsInf(p.Stiffness, 0) {
		return BoundsError("stiffness", p.Stiffness)
	}
	for _, v := range []struct {
		name  string
		value float64
	}{{"damping", p.Damping}, {"gravity", p.Gravity}, {"wind", p.Wind}, {"floor height", p.FloorHeight}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return BoundsError(v.name, v.value)
		}
	}
	if p.Damping < 0 {
		return BoundsError("damping", p.Damping)
	}
	return nil
}

// Features toggles the optional stages of a step for a scenario.
type Features struct {
	ExternalForces bool `yaml:"external_forces" json:"external_forces"`
	Collision      bool `yaml:"collision" json:"collision"`
}

type IntegratorKind int

const (
	Euler IntegratorKind = iota
	Leapfrog
	Midpoint
)

var integratorNames = [...]string{"euler", "leapfrog", "midpoint"}

func (k IntegratorKind) String() string {
	if k < 0 || int(k) >= len(integratorNames) {
		return fmt.Sprintf("integrator(%d)", int(k))
	}
	return integratorNames[k]
}

func (k IntegratorKind) Valid() bool {
	return k >= Euler && k <= Midpoint
}

func IntegratorKinds() []IntegratorKind {
	return []IntegratorKind{Euler, Leapfrog, Midpoint}
}

func ParseIntegratorKind(name string) (IntegratorKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler", "semi-implicit-euler", "0":
		return Euler, nil
	case "leapfrog", "1":
		return Leapfrog, nil
	case "midpoint", "rk2", "2":
		return Midpoint, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
}

// Forces evaluates the force model for integrators. Both methods add to
// velocities in place and leave positions and fixed points untouched.
type Forces interface {
	// Springs applies h times every spring's force, evaluated at the current positions.
	Springs(points []Point, springs []Spring, h float64) error
	// External applies gravity and wind over dt.
	External(points []Point, dt float64)
}

// Stepper advances a scene by exactly one step of size h.
type Stepper interface {
	Step(scene *Scene, f Forces, h float64) error
}

// Resetter is implemented by steppers that carry state between calls.
type Resetter interface {
	Reset()
}

// Frame is a read-only view of a committed step handed to observers.
type Frame struct {
	Points  []Point
	Springs []Spring
	Params  Params
	Time    float64
	Step    int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

type Config struct {
	Dt          float64
	Duration    float64
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.01,
		Duration:    10.0,
		SampleEvery: 1,
	}
}

// Result holds sampled positions, flattened as x0, y0, z0, x1, ...
type Result struct {
	Frames     [][]float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Flatten returns positions as x0, y0, z0, x1, ...
func Flatten(points []Point) []float64 {
	out := make([]float64, 0, 3*len(points))
	for _, p := range points {
		out = append(out, p.Position.X, p.Position.Y, p.Position.Z)
	}
	return out
}
