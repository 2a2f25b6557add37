package scenes

import (
	"fmt"
	"os"

	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// File is the YAML form of a custom scene:
//
//	name: hanging-chain
//	features: {external_forces: true, collision: true}
//	points:
//	  - {position: [0, 1, 0], fixed: true}
//	  - {position: [0.5, 1, 0], velocity: [0, 0, 0]}
//	springs:
//	  - {p1: 0, p2: 1, rest: 0.5}
type File struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Features    dynamo.Features `yaml:"features"`
	Params      *dynamo.Params  `yaml:"params,omitempty"`
	Dt          float64         `yaml:"dt,omitempty"`
	Points      []PointSpec     `yaml:"points"`
	Springs     []SpringSpec    `yaml:"springs"`
}

type PointSpec struct {
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity,omitempty"`
	Fixed    bool       `yaml:"fixed,omitempty"`
}

type SpringSpec struct {
	P1   int     `yaml:"p1"`
	P2   int     `yaml:"p2"`
	Rest float64 `yaml:"rest"`
}

// LoadFile reads a custom scenario from a YAML file.
func LoadFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return Parse(data)
}

// Parse decodes a custom scenario and checks that it builds.
func Parse(data []byte) (Scenario, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Scenario{}, fmt.Errorf("parse scene: %w", err)
	}
	if f.Name == "" {
		f.Name = "custom"
	}
	if f.Params != nil {
		if err := f.Params.Validate(); err != nil {
			return Scenario{}, fmt.Errorf("scene %s: %w", f.Name, err)
		}
	}

	sc := Scenario{
		Name:        f.Name,
		Description: f.Description,
		Features:    f.Features,
		Recommended: f.Params,
		DefaultDt:   f.Dt,
		Build:       f.Build,
	}
	if err := sc.Build(&dynamo.Scene{}); err != nil {
		return Scenario{}, fmt.Errorf("scene %s: %w", f.Name, err)
	}
	return sc, nil
}

// Build appends the file's points and springs to s in order.
func (f File) Build(s *dynamo.Scene) error {
	for _, p := range f.Points {
		s.AddPoint(vec(p.Position), vec(p.Velocity), p.Fixed)
	}
	for i, sp := range f.Springs {
		if err := s.AddSpring(sp.P1, sp.P2, sp.Rest); err != nil {
			return fmt.Errorf("spring %d: %w", i, err)
		}
	}
	return dynamo.CheckFinite(s.Points)
}

// Save writes the scene in the File format.
func Save(path string, sc Scenario) error {
	s := &dynamo.Scene{}
	if err := sc.Build(s); err != nil {
		return err
	}
	f := File{
		Name:        sc.Name,
		Description: sc.Description,
		Features:    sc.Features,
		Params:      sc.Recommended,
		Dt:          sc.DefaultDt,
	}
	for _, p := range s.Points {
		f.Points = append(f.Points, PointSpec{
			Position: [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Velocity: [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
			Fixed:    p.Fixed,
		})
	}
	for _, sp := range s.Springs {
		f.Springs = append(f.Springs, SpringSpec{P1: sp.P1, P2: sp.P2, Rest: sp.RestLength})
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
