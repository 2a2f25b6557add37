package sim

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/scenes"
	"golang.org/x/sync/errgroup"
)

// Comparison is the outcome of running one integrator on a scenario.
type Comparison struct {
	Kind        dynamo.IntegratorKind
	Result      *dynamo.Result
	Final       []dynamo.Point
	EnergyStart float64
	EnergyEnd   float64
	Elapsed     time.Duration
}

// EnergyDrift is the relative change in total energy over the run.
func (c Comparison) EnergyDrift() float64 {
	if c.EnergyStart == 0 {
		return math.Abs(c.EnergyEnd)
	}
	return math.Abs(c.EnergyEnd-c.EnergyStart) / math.Abs(c.EnergyStart)
}

// Compare runs the scenario once per integrator kind, each on its own
// Simulator, and returns the comparisons in the order of kinds. The first
// failing run cancels the others.
func Compare(ctx context.Context, sc scenes.Scenario, params dynamo.Params, kinds []dynamo.IntegratorKind, cfg dynamo.Config, opts ...Option) ([]Comparison, error) {
	out := make([]Comparison, len(kinds))
	g, ctx := errgroup.WithContext(ctx)

	for i, kind := range kinds {
		g.Go(func() error {
			s, err := New(sc, slices.Concat(opts, []Option{WithParams(params), WithIntegrator(kind)})...)
			if err != nil {
				return err
			}

			start := time.Now()
			k0, e0, g0 := s.Energy()
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			k1, e1, g1 := s.Energy()

			out[i] = Comparison{
				Kind:        kind,
				Result:      res,
				Final:       s.Snapshot(),
				EnergyStart: k0 + e0 + g0,
				EnergyEnd:   k1 + e1 + g1,
				Elapsed:     time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
