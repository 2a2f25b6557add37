package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/massspring/internal/config"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/experiment"
	"github.com/san-kum/massspring/internal/storage"
	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of runs and parameter sweeps:
//
//	name: cloth-study
//	runs:
//	  - {scenario: cloth, integrator: euler, duration: 5}
//	  - {scenario: cloth, integrator: leapfrog, duration: 5}
//	sweeps:
//	  - base: {scenario: simple, integrator: euler, dt: 0.05, duration: 5}
//	    param: stiffness
//	    min: 10
//	    max: 400
//	    steps: 8
type Batch struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Runs        []config.Config `yaml:"runs"`
	Sweeps      []Sweep         `yaml:"sweeps"`
}

// Sweep runs Base once per value of Param spread evenly over [Min, Max].
type Sweep struct {
	Base  config.Config `yaml:"base"`
	Param string        `yaml:"param"`
	Min   float64       `yaml:"min"`
	Max   float64       `yaml:"max"`
	Steps int           `yaml:"steps"`
}

// LoadBatch loads a batch from a YAML file and fills run defaults.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range b.Runs {
		b.Runs[i].FillDefaults()
	}
	for i := range b.Sweeps {
		b.Sweeps[i].Base.FillDefaults()
	}
	return &b, nil
}

// Runner executes batches, storing each run when Store is set.
type Runner struct {
	Store  *storage.Store
	Logger *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

// Outcome is one finished run of a batch.
type Outcome struct {
	RunID      string
	Scenario   string
	Integrator string
	Result     *dynamo.Result
}

// RunBatch executes all runs in order and stops at the first failure.
func (r *Runner) RunBatch(ctx context.Context, b *Batch) ([]Outcome, error) {
	logger := r.logger()
	results := make([]Outcome, 0, len(b.Runs))

	for i := range b.Runs {
		cfg := &b.Runs[i]
		logger.Info("batch run", "n", fmt.Sprintf("%d/%d", i+1, len(b.Runs)), "scenario", cfg.Scenario, "integrator", cfg.Integrator)

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("run %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		out := Outcome{
			Scenario:   exp.Scenario().Name,
			Integrator: exp.Simulator().Integrator().String(),
			Result:     result,
		}
		if r.Store != nil {
			if out.RunID, err = exp.Save(r.Store, result); err != nil {
				return results, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
		results = append(results, out)
	}

	return results, nil
}

// SweepResult holds the outcome for one parameter value. A run that blew up
// is reported with Stable false rather than failing the sweep.
type SweepResult struct {
	ParamValue  float64
	EnergyDrift float64
	MaxStretch  float64
	Steps       int
	Stable      bool
}

// RunSweep executes a parameter sweep.
func (r *Runner) RunSweep(ctx context.Context, sw *Sweep) ([]SweepResult, error) {
	if sw.Steps < 2 {
		return nil, dynamo.BoundsError("sweep steps", float64(sw.Steps))
	}
	logger := r.logger()
	results := make([]SweepResult, 0, sw.Steps)
	paramStep := (sw.Max - sw.Min) / float64(sw.Steps-1)

	for i := 0; i < sw.Steps; i++ {
		paramVal := sw.Min + float64(i)*paramStep

		cfg := sw.Base
		scenario, err := cfg.LoadScenario()
		if err != nil {
			return nil, err
		}
		params := cfg.ResolveParams(scenario)
		if err := SetParam(&params, sw.Param, paramVal); err != nil {
			return nil, err
		}
		cfg.Params = &params

		exp := experiment.New(&cfg, logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}

		sr := SweepResult{ParamValue: paramVal, Stable: true}
		result, err := exp.Run(ctx)
		switch {
		case errors.Is(err, dynamo.ErrInvalidState):
			sr.Stable = false
		case err != nil:
			return results, err
		}
		if result != nil {
			sr.Steps = result.StepsTaken
			sr.EnergyDrift = result.Metrics["energy_drift"]
			sr.MaxStretch = result.Metrics["max_stretch"]
		}
		results = append(results, sr)

		logger.Info("sweep", "n", fmt.Sprintf("%d/%d", i+1, sw.Steps), sw.Param, paramVal, "stable", sr.Stable)
	}

	return results, nil
}

// SetParam sets the named field of p.
func SetParam(p *dynamo.Params, name string, v float64) error {
	switch strings.ToLower(name) {
	case "mass":
		p.Mass = v
	case "stiffness":
		p.Stiffness = v
	case "damping":
		p.Damping = v
	case "gravity":
		p.Gravity = v
	case "wind":
		p.Wind = v
	case "floor_height", "floor":
		p.FloorHeight = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}

// SweepStats counts stable and unstable runs.
func SweepStats(results []SweepResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
