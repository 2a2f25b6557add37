package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/san-kum/massspring/internal/config"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/metrics"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
	"github.com/san-kum/massspring/internal/storage"
)

// Experiment is one configured run: scenario, parameters, integrator and
// the standard metrics.
type Experiment struct {
	cfg       *config.Config
	runCfg    dynamo.Config
	scenario  scenes.Scenario
	simulator *sim.Simulator
	logger    *log.Logger
}

func New(cfg *config.Config, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Experiment{cfg: cfg, logger: logger}
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	kind, err := e.cfg.IntegratorKind()
	if err != nil {
		return err
	}
	if e.runCfg, err = e.cfg.RunConfig(); err != nil {
		return err
	}
	if e.scenario, err = e.cfg.LoadScenario(); err != nil {
		return err
	}

	e.simulator, err = sim.New(e.scenario,
		sim.WithLogger(e.logger),
		sim.WithParams(e.cfg.ResolveParams(e.scenario)),
		sim.WithIntegrator(kind),
	)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(e.scenario.Features) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.logger.Info("run started",
		"scenario", e.scenario.Name,
		"integrator", e.simulator.Integrator(),
		"dt", e.runCfg.Dt,
		"duration", e.runCfg.Duration,
	)
	return e.simulator.Run(ctx, e.runCfg)
}

// Metadata describes the run for the store.
func (e *Experiment) Metadata() storage.RunMetadata {
	s := e.simulator
	return storage.NewRunMetadata(e.scenario.Name, s.Integrator(), s.Params(), s.Features(), s.Snapshot(), s.Springs(), e.runCfg)
}

// Save stores a finished run and returns its ID.
func (e *Experiment) Save(store *storage.Store, result *dynamo.Result) (string, error) {
	id, err := store.Save(e.Metadata(), result)
	if err != nil {
		return "", err
	}
	e.logger.Info("run saved", "id", id, "steps", result.StepsTaken)
	return id, nil
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Scenario() scenes.Scenario { return e.scenario }
func (e *Experiment) RunConfig() dynamo.Config  { return e.runCfg }
