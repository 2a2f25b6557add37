package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/integrators"
	"github.com/san-kum/massspring/internal/physics"
	"github.com/san-kum/massspring/internal/scenes"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simulator owns one scene and advances it with the selected integrator.
// It is not safe for concurrent use.
type Simulator struct {
	scenario  scenes.Scenario
	scene     *dynamo.Scene
	staged    *dynamo.Scene
	params    dynamo.Params
	kind      dynamo.IntegratorKind
	steppers  map[dynamo.IntegratorKind]dynamo.Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *log.Logger
	time      float64
	steps     int
	busy      bool
}

// maxPrealloc bounds the samples reserved up front by Run.
const maxPrealloc = 4096

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithParams overrides the scenario's recommended parameters.
func WithParams(p dynamo.Params) Option {
	return func(s *Simulator) { s.params = p }
}

func WithIntegrator(k dynamo.IntegratorKind) Option {
	return func(s *Simulator) { s.kind = k }
}

func New(sc scenes.Scenario, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		scenario: sc,
		scene:    &dynamo.Scene{},
		staged:   &dynamo.Scene{},
		params:   dynamo.DefaultParams(),
		kind:     dynamo.Euler,
		steppers: make(map[dynamo.IntegratorKind]dynamo.Stepper, 3),
		logger:   log.New(io.Discard),
	}
	if sc.Recommended != nil {
		s.params = *sc.Recommended
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	for _, k := range dynamo.IntegratorKinds() {
		st, err := integrators.New(k)
		if err != nil {
			return nil, err
		}
		s.steppers[k] = st
	}
	if _, ok := s.steppers[s.kind]; !ok {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrUnknownIntegrator, int(s.kind))
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Reset rebuilds the scene from the scenario, re-primes Leapfrog and
// rewinds time. Parameters and the integrator choice are kept.
func (s *Simulator) Reset() error {
	if s.busy {
		return dynamo.ErrStepInProgress
	}
	// Between steps staged shares Springs with the committed scene.
	s.staged.Springs = nil
	s.staged.Clear()
	if err := s.scenario.Build(s.staged); err != nil {
		return fmt.Errorf("build %s: %w", s.scenario.Name, err)
	}
	if err := s.staged.Validate(); err != nil {
		return fmt.Errorf("build %s: %w", s.scenario.Name, err)
	}

	s.scene, s.staged = s.staged, s.scene
	for _, st := range s.steppers {
		if r, ok := st.(dynamo.Resetter); ok {
			r.Reset()
		}
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.time = 0
	s.steps = 0

	s.logger.Debug("scene reset", "scenario", s.scenario.Name, "points", len(s.scene.Points), "springs", len(s.scene.Springs))
	return nil
}

// Load switches to another scenario, applies its recommended parameters
// and resets.
func (s *Simulator) Load(sc scenes.Scenario) error {
	if s.busy {
		return dynamo.ErrStepInProgress
	}
	prev, prevParams := s.scenario, s.params
	s.scenario = sc
	if sc.Recommended != nil {
		s.params = *sc.Recommended
	}
	if err := s.Reset(); err != nil {
		s.scenario, s.params = prev, prevParams
		return err
	}
	s.logger.Info("scenario loaded", "scenario", sc.Name)
	return nil
}

// Advance moves the scene forward by h. On error the scene is left exactly
// as it was before the call.
func (s *Simulator) Advance(h float64) error {
	if s.busy {
		return dynamo.ErrStepInProgress
	}
	if !(h > 0) || math.IsInf(h, 0) {
		return dynamo.BoundsError("step size", h)
	}
	if err := s.params.Validate(); err != nil {
		return err
	}

	s.busy = true
	defer func() { s.busy = false }()

	s.staged.Points = append(s.staged.Points[:0], s.scene.Points...)
	s.staged.Springs = s.scene.Springs

	f := physics.NewEvaluator(s.params, s.scenario.Features)
	if err := s.steppers[s.kind].Step(s.staged, f, h); err != nil {
		s.logger.Warn("step failed", "step", s.steps, "integrator", s.kind, "err", err)
		return &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
	}
	if s.scenario.Features.Collision {
		if hits := (physics.Floor{Height: s.params.FloorHeight}).Resolve(s.staged.Points); hits > 0 {
			s.logger.Debug("floor contact", "step", s.steps, "points", hits)
		}
	}

	s.scene, s.staged = s.staged, s.scene
	s.time += h
	s.steps++

	if len(s.metrics) > 0 || len(s.observers) > 0 {
		frame := s.frame()
		for _, m := range s.metrics {
			m.Observe(frame)
		}
		for _, o := range s.observers {
			o.OnStep(frame)
		}
	}
	return nil
}

// Run advances the scene for cfg.Duration in steps of cfg.Dt starting from
// the current state, sampling positions every cfg.SampleEvery steps.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	n := math.Round(cfg.Duration / cfg.Dt)
	if !(n < math.MaxInt) {
		return nil, dynamo.BoundsError("duration/dt", n)
	}
	steps := int(n)
	every := max(cfg.SampleEvery, 1)
	capacity := min(steps/every+1, maxPrealloc)
	result := &dynamo.Result{
		Frames:  make([][]float64, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	record := func() {
		result.Frames = append(result.Frames, dynamo.Flatten(s.scene.Points))
		result.Times = append(result.Times, s.time)
	}
	record()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if err := s.Advance(cfg.Dt); err != nil {
			return result, err
		}
		result.StepsTaken++
		if result.StepsTaken%every == 0 {
			record()
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Debug("run finished", "steps", result.StepsTaken, "samples", len(result.Frames))
	return result, nil
}

func validateConfig(cfg dynamo.Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return dynamo.BoundsError("dt", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return dynamo.BoundsError("duration", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return dynamo.BoundsError("sample every", float64(cfg.SampleEvery))
	}
	return nil
}

func (s *Simulator) frame() dynamo.Frame {
	return dynamo.Frame{
		Points:  s.Snapshot(),
		Springs: s.scene.Springs,
		Params:  s.params,
		Time:    s.time,
		Step:    s.steps,
	}
}

func (s *Simulator) setParams(p dynamo.Params) error {
	if s.busy {
		return dynamo.ErrStepInProgress
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

func (s *Simulator) SetParams(p dynamo.Params) error { return s.setParams(p) }

func (s *Simulator) SetMass(m float64) error {
	p := s.params
	p.Mass = m
	return s.setParams(p)
}

func (s *Simulator) SetStiffness(k float64) error {
	p := s.params
	p.Stiffness = k
	return s.setParams(p)
}

// SetDamping stores the damping factor. The force model does not use it.
func (s *Simulator) SetDamping(d float64) error {
	p := s.params
	p.Damping = d
	return s.setParams(p)
}

func (s *Simulator) SetGravity(g float64) error {
	p := s.params
	p.Gravity = g
	return s.setParams(p)
}

func (s *Simulator) SetWind(w float64) error {
	p := s.params
	p.Wind = w
	return s.setParams(p)
}

// SetIntegrator selects the integrator for the next step. Leapfrog keeps
// its phase across switches; only Reset re-primes it.
func (s *Simulator) SetIntegrator(k dynamo.IntegratorKind) error {
	if s.busy {
		return dynamo.ErrStepInProgress
	}
	if _, ok := s.steppers[k]; !ok {
		return fmt.Errorf("%w: %d", dynamo.ErrUnknownIntegrator, int(k))
	}
	if k != s.kind {
		s.logger.Debug("integrator switched", "from", s.kind, "to", k)
	}
	s.kind = k
	return nil
}

func (s *Simulator) Params() dynamo.Params             { return s.params }
func (s *Simulator) Integrator() dynamo.IntegratorKind { return s.kind }
func (s *Simulator) Scenario() scenes.Scenario         { return s.scenario }
func (s *Simulator) Time() float64                     { return s.time }
func (s *Simulator) Steps() int                        { return s.steps }
func (s *Simulator) PointCount() int                   { return len(s.scene.Points) }
func (s *Simulator) SpringCount() int                  { return len(s.scene.Springs) }
func (s *Simulator) Features() dynamo.Features         { return s.scenario.Features }

// LeapfrogPhase reports whether the next Leapfrog step will only prime.
func (s *Simulator) LeapfrogPhase() integrators.Phase {
	if lf, ok := s.steppers[dynamo.Leapfrog].(*integrators.Leapfrog); ok {
		return lf.Phase()
	}
	return integrators.Priming
}

func (s *Simulator) Position(i int) (r3.Vec, error) {
	if i < 0 || i >= len(s.scene.Points) {
		return r3.Vec{}, dynamo.IndexError("point", i, len(s.scene.Points))
	}
	return s.scene.Points[i].Position, nil
}

func (s *Simulator) Velocity(i int) (r3.Vec, error) {
	if i < 0 || i >= len(s.scene.Points) {
		return r3.Vec{}, dynamo.IndexError("point", i, len(s.scene.Points))
	}
	return s.scene.Points[i].Velocity, nil
}

func (s *Simulator) Fixed(i int) (bool, error) {
	if i < 0 || i >= len(s.scene.Points) {
		return false, dynamo.IndexError("point", i, len(s.scene.Points))
	}
	return s.scene.Points[i].Fixed, nil
}

func (s *Simulator) Spring(i int) (dynamo.Spring, error) {
	if i < 0 || i >= len(s.scene.Springs) {
		return dynamo.Spring{}, dynamo.IndexError("spring", i, len(s.scene.Springs))
	}
	return s.scene.Springs[i], nil
}

// Snapshot returns a copy of all points.
func (s *Simulator) Snapshot() []dynamo.Point {
	out := make([]dynamo.Point, len(s.scene.Points))
	copy(out, s.scene.Points)
	return out
}

// Springs returns a copy of all springs.
func (s *Simulator) Springs() []dynamo.Spring {
	out := make([]dynamo.Spring, len(s.scene.Springs))
	copy(out, s.scene.Springs)
	return out
}

// Energy returns kinetic, elastic and gravitational energy of the scene.
func (s *Simulator) Energy() (kinetic, elastic, gravity float64) {
	return physics.NewEvaluator(s.params, s.scenario.Features).Energy(s.scene.Points, s.scene.Springs)
}
