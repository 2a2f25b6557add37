package config

import (
	"sort"

	"github.com/san-kum/massspring/internal/dynamo"
)

var Presets = map[string]map[string]*Config{
	"one-step": {
		"euler": {
			Scenario: "one-step", Integrator: "euler", Dt: 0.1, Duration: 0.1,
		},
		"midpoint": {
			Scenario: "one-step", Integrator: "midpoint", Dt: 0.1, Duration: 0.1,
		},
	},
	"simple": {
		"soft": {
			Scenario: "simple", Integrator: "leapfrog", Dt: 0.005, Duration: 20.0,
			Params: &dynamo.Params{Mass: 10, Stiffness: 5, FloorHeight: dynamo.DefaultFloorHeight},
		},
		"stiff": {
			Scenario: "simple", Integrator: "midpoint", Dt: 0.001, Duration: 5.0,
			Params: &dynamo.Params{Mass: 10, Stiffness: 400, FloorHeight: dynamo.DefaultFloorHeight},
		},
	},
	"cloth": {
		"breeze": {
			Scenario: "cloth", Integrator: "leapfrog", Dt: 0.005, Duration: 20.0, SampleEvery: 4,
			Params: &dynamo.Params{Mass: 10, Stiffness: 140, Gravity: 0.1, Wind: 2, FloorHeight: dynamo.DefaultFloorHeight},
		},
		"storm": {
			Scenario: "cloth", Integrator: "midpoint", Dt: 0.002, Duration: 10.0, SampleEvery: 10,
			Params: &dynamo.Params{Mass: 10, Stiffness: 140, Gravity: 0.1, Wind: 40, FloorHeight: dynamo.DefaultFloorHeight},
		},
		"drop": {
			Scenario: "cloth", Integrator: "euler", Dt: 0.002, Duration: 5.0, SampleEvery: 10,
			Params: &dynamo.Params{Mass: 10, Stiffness: 300, Gravity: 9.81, FloorHeight: dynamo.DefaultFloorHeight},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if cfg.Params != nil {
		p := *cfg.Params
		c.Params = &p
	}
	return &c
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
