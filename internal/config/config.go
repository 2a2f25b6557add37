package config

import (
	"fmt"
	"os"

	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/scenes"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario   = "simple"
	DefaultIntegrator = "euler"
	DefaultDt         = 0.005
	DefaultDuration   = 10.0
	DefaultSample     = 1
)

// Config is a run description as stored in YAML:
//
//	scenario: cloth
//	integrator: leapfrog
//	dt: 0.005
//	duration: 20
//	params: {mass: 10, stiffness: 140, gravity: 0.1, wind: 2, floor_height: -0.9}
//
// SceneFile, when set, replaces Scenario with a custom scene.
type Config struct {
	Scenario    string         `yaml:"scenario"`
	SceneFile   string         `yaml:"scene_file,omitempty"`
	Integrator  string         `yaml:"integrator"`
	Dt          float64        `yaml:"dt"`
	Duration    float64        `yaml:"duration"`
	SampleEvery int            `yaml:"sample_every,omitempty"`
	Params      *dynamo.Params `yaml:"params,omitempty"`
}

// UnmarshalYAML decodes a params block on top of the scenario's
// recommended parameters, so omitted fields keep the scenario's values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	p := plain(*c)
	if err := value.Decode(&p); err != nil {
		return err
	}

	var block struct {
		Params yaml.Node `yaml:"params"`
	}
	if err := value.Decode(&block); err != nil {
		return err
	}
	if block.Params.Kind != 0 {
		base := baseParams(p.Scenario, p.SceneFile)
		if err := block.Params.Decode(&base); err != nil {
			return err
		}
		p.Params = &base
	}

	*c = Config(p)
	return nil
}

// baseParams are the built-in scenario's recommended parameters, else the
// defaults. Scene files are not read here.
func baseParams(scenario, sceneFile string) dynamo.Params {
	if sceneFile == "" {
		if scenario == "" {
			scenario = DefaultScenario
		}
		if sc, err := scenes.Get(scenario); err == nil && sc.Recommended != nil {
			return *sc.Recommended
		}
	}
	return dynamo.DefaultParams()
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    DefaultScenario,
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSample,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.IntegratorKind(); err != nil {
		return err
	}
	if _, err := c.RunConfig(); err != nil {
		return err
	}
	if c.Params != nil {
		return c.Params.Validate()
	}
	return nil
}

func (c *Config) IntegratorKind() (dynamo.IntegratorKind, error) {
	return dynamo.ParseIntegratorKind(c.Integrator)
}

// LoadScenario resolves the scene file or the built-in scenario.
func (c *Config) LoadScenario() (scenes.Scenario, error) {
	if c.SceneFile != "" {
		return scenes.LoadFile(c.SceneFile)
	}
	return scenes.Get(c.Scenario)
}

// ResolveParams returns the explicit params, else the scenario's
// recommended ones, else the defaults.
func (c *Config) ResolveParams(sc scenes.Scenario) dynamo.Params {
	switch {
	case c.Params != nil:
		return *c.Params
	case sc.Recommended != nil:
		return *sc.Recommended
	default:
		return dynamo.DefaultParams()
	}
}

func (c *Config) RunConfig() (dynamo.Config, error) {
	rc := dynamo.Config{Dt: c.Dt, Duration: c.Duration, SampleEvery: c.SampleEvery}
	if !(rc.Dt > 0) {
		return rc, dynamo.BoundsError("dt", rc.Dt)
	}
	if !(rc.Duration > 0) {
		return rc, dynamo.BoundsError("duration", rc.Duration)
	}
	if rc.SampleEvery < 0 {
		return rc, dynamo.BoundsError("sample_every", float64(rc.SampleEvery))
	}
	return rc, nil
}

// FillDefaults sets zero fields to their defaults. Params stay nil so the
// scenario's recommendation applies.
func (c *Config) FillDefaults() {
	d := DefaultConfig()
	if c.Scenario == "" && c.SceneFile == "" {
		c.Scenario = d.Scenario
	}
	if c.Integrator == "" {
		c.Integrator = d.Integrator
	}
	if c.Dt == 0 {
		c.Dt = d.Dt
	}
	if c.Duration == 0 {
		c.Duration = d.Duration
	}
	if c.SampleEvery == 0 {
		c.SampleEvery = d.SampleEvery
	}
}
