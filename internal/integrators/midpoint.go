package integrators

import (
	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Midpoint is the explicit midpoint (RK2) method. Forces are evaluated
// twice per step: at the start positions and at the half-step positions.
// Velocities are not reset between the two stages.
type Midpoint struct {
	start []r3.Vec
}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) ensureScratch(n int) {
	if cap(m.start) < n {
		m.start = make([]r3.Vec, n)
	}
	m.start = m.start[:n]
}

func (m *Midpoint) Step(scene *dynamo.Scene, f dynamo.Forces, h float64) error {
	points := scene.Points
	m.ensureScratch(len(points))
	for i := range points {
		m.start[i] = points[i].Position
	}

	half := 0.5 * h
	f.External(points, half)
	if err := f.Springs(points, scene.Springs, half); err != nil {
		return err
	}
	drift(points, half)

	f.External(points, h)
	if err := f.Springs(points, scene.Springs, h); err != nil {
		return err
	}
	for i := range points {
		if points[i].Fixed {
			continue
		}
		points[i].Position = r3.Add(m.start[i], r3.Scale(h, points[i].Velocity))
	}

	return dynamo.CheckFinite(points)
}
