package scenes

import (
	"fmt"
	"sort"

	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	ClothSize    = 10
	ClothSpacing = 0.3
	shearFactor  = 1.414
)

// Scenario describes how to build a scene and which optional stages of a
// step apply to it.
type Scenario struct {
	Name        string
	Description string
	Features    dynamo.Features
	// Recommended parameters are applied on selection when non-nil.
	Recommended *dynamo.Params
	// SingleStep scenarios advance once per request instead of continuously.
	SingleStep bool
	DefaultDt  float64
	Build      func(s *dynamo.Scene) error
}

var registry = map[string]Scenario{
	"one-step": {
		Name:        "one-step",
		Description: "two points, one spring; one step per request",
		SingleStep:  true,
		DefaultDt:   0.1,
		Build:       TwoPoint,
	},
	"simple": {
		Name:        "simple",
		Description: "two points, one spring",
		DefaultDt:   0.005,
		Build:       TwoPoint,
	},
	"cloth": {
		Name:        "cloth",
		Description: "10x10 cloth with structural, shear and flexion springs",
		Features:    dynamo.Features{ExternalForces: true, Collision: true},
		Recommended: &dynamo.Params{
			Mass:        dynamo.DefaultMass,
			Stiffness:   140,
			Gravity:     0.1,
			Wind:        2,
			FloorHeight: dynamo.DefaultFloorHeight,
		},
		DefaultDt: 0.005,
		Build: func(s *dynamo.Scene) error {
			return Cloth(s, ClothSize, ClothSpacing)
		},
	},
}

// Get returns a built-in scenario by name.
func Get(name string) (Scenario, error) {
	sc, ok := registry[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownScenario, name, Names())
	}
	return sc, nil
}

// Names lists built-in scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TwoPoint builds A at the origin moving along -x and B at (0,2,0) moving
// along +x, joined by a spring of rest length 1.
func TwoPoint(s *dynamo.Scene) error {
	a := s.AddPoint(r3.Vec{}, r3.Vec{X: -1}, false)
	b := s.AddPoint(r3.Vec{Y: 2}, r3.Vec{X: 1}, false)
	return s.AddSpring(a, b, 1)
}

// Cloth builds an n x n grid in the plane y = 1 with point n*i+j at
// (spacing*i, 1, spacing*j). The first two corners along z are pinned.
func Cloth(s *dynamo.Scene, n int, spacing float64) error {
	if n < 2 {
		return dynamo.BoundsError("cloth size", float64(n))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s.AddPoint(r3.Vec{X: spacing * float64(i), Y: 1, Z: spacing * float64(j)}, r3.Vec{}, false)
		}
	}
	s.Points[0].Fixed = true
	s.Points[n-1].Fixed = true

	var err error
	add := func(p1, p2 int, rest float64) {
		if err == nil {
			err = s.AddSpring(p1, p2, rest)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := n*i + j
			// structural
			if j < n-1 {
				add(k, k+1, spacing)
			}
			if i < n-1 {
				add(k, k+n, spacing)
			}
			// flexion
			if j < n-2 {
				add(k, k+2, 2*spacing)
			}
			if i < n-2 {
				add(k, k+2*n, 2*spacing)
			}
			// shear
			if i < n-1 && j < n-1 {
				add(k, k+n+1, shearFactor*spacing)
			}
			if i < n-1 && j > 0 {
				add(k, k+n-1, shearFactor*spacing)
			}
		}
	}
	return err
}
