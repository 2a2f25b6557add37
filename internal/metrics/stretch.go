package metrics

import (
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/physics"
)

// Stretch is the worst relative spring deformation seen.
type Stretch struct {
	worst float64
}

func NewStretch() *Stretch { return &Stretch{} }

func (s *Stretch) Name() string { return "max_stretch" }

func (s *Stretch) Observe(f dynamo.Frame) {
	s.worst = max(s.worst, physics.Stretch(f.Points, f.Springs))
}

func (s *Stretch) Value() float64 { return s.worst }
func (s *Stretch) Reset()         { s.worst = 0 }

// Standard returns the metrics recorded for every stored run.
func Standard(features dynamo.Features) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(features),
		NewEnergyDrift(features),
		NewStability(50),
		NewStretch(),
	}
}
