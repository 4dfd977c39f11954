package config

import (
	"fmt"
	"sort"
)

// Preset returns a named built-in scenario. Every preset starts from
// the baseline defaults; mutating the result does not affect later
// calls.
func Preset(name string) (*Config, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q (have %v)", name, PresetNames())
	}
	return build(), nil
}

// PresetNames lists the built-in scenarios in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var presets = map[string]func() *Config{
	// baseline is the default scenario: one house, hourly steps, a
	// single evening demand-response event.
	"baseline": Default,

	// high_solar oversizes PV against a tight export limit, so midday
	// surplus stresses the battery and the feeder check.
	"high_solar": func() *Config {
		cfg := Default()
		cfg.Solar.Model = "ar1"
		cfg.Solar.KWPeak = 12
		cfg.Feeder.MaxExportKW = 2
		return cfg
	},

	// dr_stress stacks overlapping curtailment calls onto a larger EV
	// fleet to stress the delivered-fraction KPI.
	"dr_stress": func() *Config {
		cfg := Default()
		cfg.Simulation.Houses = 3
		cfg.EV = EVConfig{
			MaxChargeKW:   11,
			DemandKWhMin:  10,
			DemandKWhMax:  25,
			DwellStepsMin: 4,
			DwellStepsMax: 12,
		}
		cfg.DREvents = []DREventConfig{
			{StartStep: 8, EndStep: 11, CurtailKW: 2},
			{StartStep: 10, EndStep: 14, CurtailKW: 1.5},
			{StartStep: 17, EndStep: 20, CurtailKW: 3},
		}
		return cfg
	},
}
