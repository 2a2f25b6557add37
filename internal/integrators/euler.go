package integrators

import (
	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Euler is the semi-implicit (symplectic) Euler method: velocities are
// updated from forces at the current positions, then positions move with
// the new velocities.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(scene *dynamo.Scene, f dynamo.Forces, h float64) error {
	f.External(scene.Points, h)
	if err := f.Springs(scene.Points, scene.Springs, h); err != nil {
		return err
	}
	drift(scene.Points, h)
	return dynamo.CheckFinite(scene.Points)
}

// drift moves every non-fixed point by h times its velocity.
func drift(points []dynamo.Point, h float64) {
	for i := range points {
		if points[i].Fixed {
			continue
		}
		points[i].Position = r3.Add(points[i].Position, r3.Scale(h, points[i].Velocity))
	}
}
