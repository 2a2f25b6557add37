package integrators

import "github.com/san-kum/massspring/internal/dynamo"

// Phase is where a Leapfrog integrator is in its staggered cycle.
type Phase int

const (
	// Priming means velocities are still synchronous with positions; the
	// next step only moves them to the half step.
	Priming Phase = iota
	// Running means velocities lead positions by half a step.
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "priming"
}

// Leapfrog keeps velocities half a step ahead of positions. The first
// step after construction or Reset only computes v(t0+h/2) and leaves
// positions where they are.
type Leapfrog struct {
	phase Phase
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{phase: Priming}
}

func (l *Leapfrog) Phase() Phase { return l.phase }

// Reset re-primes the integrator. Call it whenever the scene is rebuilt.
func (l *Leapfrog) Reset() { l.phase = Priming }

func (l *Leapfrog) Step(scene *dynamo.Scene, f dynamo.Forces, h float64) error {
	f.External(scene.Points, h)

	if l.phase == Priming {
		if err := f.Springs(scene.Points, scene.Springs, 0.5*h); err != nil {
			return err
		}
		if err := dynamo.CheckFinite(scene.Points); err != nil {
			return err
		}
		l.phase = Running
		return nil
	}

	// v(t+h/2) and x(t) -> x(t+h), then v(t+3h/2)
	drift(scene.Points, h)
	if err := f.Springs(scene.Points, scene.Springs, h); err != nil {
		return err
	}
	return dynamo.CheckFinite(scene.Points)
}
