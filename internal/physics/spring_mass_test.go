package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func pair(ya, yb float64) []dynamo.Point {
	return []dynamo.Point{
		{Position: r3.Vec{Y: ya}},
		{Position: r3.Vec{Y: yb}},
	}
}

func TestSpringForce(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   r3.Vec
		rest, k  float64
		expected float64
	}{
		{"stretched", r3.Vec{}, r3.Vec{Y: 2}, 1, 40, 20},
		{"at rest", r3.Vec{}, r3.Vec{X: 1}, 1, 40, 0},
		{"compressed", r3.Vec{}, r3.Vec{Z: 0.5}, 1, 10, -10},
		{"diagonal", r3.Vec{X: 3}, r3.Vec{Y: 4}, 2.5, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpringForce(tt.p1, tt.p2, tt.rest, tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("SpringForce() = %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestSpringForce_Degenerate(t *testing.T) {
	_, err := SpringForce(r3.Vec{X: 1}, r3.Vec{X: 1}, 1, 40)
	if !errors.Is(err, dynamo.ErrDegenerateSpring) {
		t.Errorf("expected ErrDegenerateSpring, got %v", err)
	}
}

func TestEvaluatorSprings_PullsTogether(t *testing.T) {
	e := NewEvaluator(dynamo.DefaultParams(), dynamo.Features{})
	points := pair(0, 2)
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}

	if err := e.Springs(points, springs, 0.1); err != nil {
		t.Fatal(err)
	}

	// force 20, -h*force*(a-b)/m = -0.1*20*(0,-2,0)/10
	if math.Abs(points[0].Velocity.Y-0.4) > 1e-12 {
		t.Errorf("point 0 vy = %f, want 0.4", points[0].Velocity.Y)
	}
	if math.Abs(points[1].Velocity.Y+0.4) > 1e-12 {
		t.Errorf("point 1 vy = %f, want -0.4", points[1].Velocity.Y)
	}
	if points[0].Position.Y != 0 || points[1].Position.Y != 2 {
		t.Error("Springs moved positions")
	}
}

func TestEvaluatorSprings_SkipsFixed(t *testing.T) {
	e := NewEvaluator(dynamo.DefaultParams(), dynamo.Features{})
	points := pair(0, 2)
	points[0].Fixed = true
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}

	if err := e.Springs(points, springs, 0.1); err != nil {
		t.Fatal(err)
	}
	if points[0].Velocity != (r3.Vec{}) {
		t.Errorf("fixed point velocity changed: %v", points[0].Velocity)
	}
	if points[1].Velocity.Y >= 0 {
		t.Errorf("free point not pulled: %v", points[1].Velocity)
	}
}

func TestEvaluatorSprings_SharedEndpointAccumulates(t *testing.T) {
	e := NewEvaluator(dynamo.DefaultParams(), dynamo.Features{})
	points := []dynamo.Point{
		{Position: r3.Vec{X: -2}},
		{Position: r3.Vec{}},
		{Position: r3.Vec{X: 2}},
	}
	springs := []dynamo.Spring{
		{P1: 0, P2: 1, RestLength: 1},
		{P1: 1, P2: 2, RestLength: 1},
	}

	if err := e.Springs(points, springs, 0.1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(points[1].Velocity.X) > 1e-12 {
		t.Errorf("symmetric pulls should cancel on the middle point, got %v", points[1].Velocity)
	}
	if points[0].Velocity.X <= 0 || points[2].Velocity.X >= 0 {
		t.Errorf("outer points not pulled inward: %v %v", points[0].Velocity, points[2].Velocity)
	}
}

func TestEvaluatorSprings_Degenerate(t *testing.T) {
	e := NewEvaluator(dynamo.DefaultParams(), dynamo.Features{})
	points := pair(1, 1)
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}

	err := e.Springs(points, springs, 0.1)
	if !errors.Is(err, dynamo.ErrDegenerateSpring) {
		t.Errorf("expected ErrDegenerateSpring, got %v", err)
	}
}

func TestEvaluatorExternal(t *testing.T) {
	params := dynamo.DefaultParams()
	params.Gravity = 9.81
	params.Wind = 2

	t.Run("disabled", func(t *testing.T) {
		e := NewEvaluator(params, dynamo.Features{})
		points := pair(0, 1)
		e.External(points, 0.1)
		for i, p := range points {
			if p.Velocity != (r3.Vec{}) {
				t.Errorf("point %d velocity changed with external forces off: %v", i, p.Velocity)
			}
		}
	})

	t.Run("enabled", func(t *testing.T) {
		e := NewEvaluator(params, dynamo.Features{ExternalForces: true})
		points := pair(0, 1)
		points[1].Fixed = true
		e.External(points, 0.1)

		if math.Abs(points[0].Velocity.Y+0.981) > 1e-12 {
			t.Errorf("vy = %f, want -0.981", points[0].Velocity.Y)
		}
		if math.Abs(points[0].Velocity.X-0.02) > 1e-12 {
			t.Errorf("vx = %f, want 0.02", points[0].Velocity.X)
		}
		if points[0].Position != (r3.Vec{}) {
			t.Error("External moved a position")
		}
		if points[1].Velocity != (r3.Vec{}) {
			t.Error("External changed a fixed point")
		}
	})
}

func TestEnergy(t *testing.T) {
	params := dynamo.DefaultParams()
	params.Gravity = 1
	e := NewEvaluator(params, dynamo.Features{ExternalForces: true})
	points := pair(0, 2)
	points[0].Velocity = r3.Vec{X: 1}
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}

	ke, pe, ge := e.Energy(points, springs)
	if math.Abs(ke-5) > 1e-12 {
		t.Errorf("kinetic = %f, want 5", ke)
	}
	if math.Abs(pe-20) > 1e-12 {
		t.Errorf("elastic = %f, want 20", pe)
	}
	if math.Abs(ge-20) > 1e-12 {
		t.Errorf("gravity = %f, want 20", ge)
	}
}

func TestStretch(t *testing.T) {
	points := pair(0, 1.5)
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}
	if got := Stretch(points, springs); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Stretch() = %f, want 0.5", got)
	}
}
