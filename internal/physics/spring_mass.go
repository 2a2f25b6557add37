package physics

import (
	"fmt"

	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpringForce returns the scalar k*(l-rest)/l for endpoints p1 and p2.
// Multiplied by (p1-p2) it gives the pull on p1 toward p2 for a stretched
// spring and the push away from it for a compressed one.
func SpringForce(p1, p2 r3.Vec, rest, stiffness float64) (float64, error) {
	l := r3.Norm(r3.Sub(p1, p2))
	if l == 0 {
		return 0, dynamo.ErrDegenerateSpring
	}
	return stiffness * (l - rest) / l, nil
}

// Evaluator implements dynamo.Forces with uniform mass and stiffness.
type Evaluator struct {
	Params   dynamo.Params
	Features dynamo.Features
}

func NewEvaluator(params dynamo.Params, features dynamo.Features) *Evaluator {
	return &Evaluator{Params: params, Features: features}
}

// Springs adds -h*force*(pi-pj)/mass to each non-fixed endpoint's velocity.
// Springs are processed in order and every force uses the positions as they
// were on entry; only velocities change.
func (e *Evaluator) Springs(points []dynamo.Point, springs []dynamo.Spring, h float64) error {
	m := e.Params.Mass
	for i, s := range springs {
		p1, p2 := &points[s.P1], &points[s.P2]
		force, err := SpringForce(p1.Position, p2.Position, s.RestLength, e.Params.Stiffness)
		if err != nil {
			return fmt.Errorf("spring %d (%d-%d): %w", i, s.P1, s.P2, err)
		}
		d := r3.Sub(p1.Position, p2.Position)
		if !p1.Fixed {
			p1.Velocity = r3.Sub(p1.Velocity, r3.Scale(h*force/m, d))
		}
		if !p2.Fixed {
			p2.Velocity = r3.Add(p2.Velocity, r3.Scale(h*force/m, d))
		}
	}
	return nil
}

// External applies gravity on Y and wind on X over dt to every non-fixed
// point. Wind is divided by mass, gravity is not.
func (e *Evaluator) External(points []dynamo.Point, dt float64) {
	if !e.Features.ExternalForces {
		return
	}
	for i := range points {
		p := &points[i]
		if p.Fixed {
			continue
		}
		p.Velocity.Y += -dt * e.Params.Gravity
		p.Velocity.X += dt * e.Params.Wind / e.Params.Mass
	}
}

// Energy returns kinetic, spring potential and gravitational potential
// energy of the scene. Gravity is measured from y = 0 and only counted when
// external forces are enabled.
func (e *Evaluator) Energy(points []dynamo.Point, springs []dynamo.Spring) (kinetic, elastic, gravity float64) {
	m := e.Params.Mass
	for _, p := range points {
		kinetic += 0.5 * m * r3.Norm2(p.Velocity)
		if e.Features.ExternalForces && !p.Fixed {
			gravity += m * e.Params.Gravity * p.Position.Y
		}
	}
	for _, s := range springs {
		stretch := r3.Norm(r3.Sub(points[s.P1].Position, points[s.P2].Position)) - s.RestLength
		elastic += 0.5 * e.Params.Stiffness * stretch * stretch
	}
	return kinetic, elastic, gravity
}

// Stretch returns the largest |l-rest|/rest over all springs.
func Stretch(points []dynamo.Point, springs []dynamo.Spring) float64 {
	worst := 0.0
	for _, s := range springs {
		l := r3.Norm(r3.Sub(points[s.P1].Position, points[s.P2].Position))
		rel := (l - s.RestLength) / s.RestLength
		if rel < 0 {
			rel = -rel
		}
		if rel > worst {
			worst = rel
		}
	}
	return worst
}
