// Package config loads and validates scenario configuration from
// yaml/json files, built-in presets and environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/jdhoffa/vpp-sim/infra/metrics"
	"github.com/jdhoffa/vpp-sim/infra/mqtt"
)

// Config is a full scenario: engine parameters, device fleet, feeder
// limits, demand-response calendar and output backends.
type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Baseload   BaseloadConfig   `json:"baseload"`
	Solar      SolarConfig      `json:"solar"`
	Battery    BatteryConfig    `json:"battery"`
	EV         EVConfig         `json:"ev"`
	Feeder     FeederConfig     `json:"feeder"`
	DREvents   []DREventConfig  `json:"dr_events"`
	Metrics    MetricsConfig    `json:"metrics"`
	MQTT       MQTTConfig       `json:"mqtt"`
}

type SimulationConfig struct {
	StepsPerDay          int     `json:"steps_per_day"`
	Days                 int     `json:"days"`
	Seed                 int64   `json:"seed"`
	Houses               int     `json:"houses"`
	Controller           string  `json:"controller"`
	ImbalancePricePerKWh float64 `json:"imbalance_price_per_kwh"`
}

type BaseloadConfig struct {
	BaseKW   float64 `json:"base_kw"`
	AmpKW    float64 `json:"amp_kw"`
	PhaseRad float64 `json:"phase_rad"`
	NoiseStd float64 `json:"noise_std"`
}

type SolarConfig struct {
	Model         string  `json:"model"` // "simple" or "ar1"
	KWPeak        float64 `json:"kw_peak"`
	SunriseIdx    int     `json:"sunrise_idx"`
	SunsetIdx     int     `json:"sunset_idx"`
	NoiseStd      float64 `json:"noise_std"`
	CloudAlpha    float64 `json:"cloud_alpha"`
	CloudNoiseStd float64 `json:"cloud_noise_std"`
}

type BatteryConfig struct {
	CapacityKWh    float64 `json:"capacity_kwh"`
	InitialSoC     float64 `json:"initial_soc"`
	MaxChargeKW    float64 `json:"max_charge_kw"`
	MaxDischargeKW float64 `json:"max_discharge_kw"`
	EtaCharge      float64 `json:"eta_charge"`
	EtaDischarge   float64 `json:"eta_discharge"`
}

type EVConfig struct {
	MaxChargeKW   float64 `json:"max_charge_kw"`
	DemandKWhMin  float64 `json:"demand_kwh_min"`
	DemandKWhMax  float64 `json:"demand_kwh_max"`
	DwellStepsMin int     `json:"dwell_steps_min"`
	DwellStepsMax int     `json:"dwell_steps_max"`
}

type FeederConfig struct {
	MaxImportKW float64 `json:"max_import_kw"`
	MaxExportKW float64 `json:"max_export_kw"`
}

type DREventConfig struct {
	StartStep int     `json:"start_step"`
	EndStep   int     `json:"end_step"` // inclusive
	CurtailKW float64 `json:"curtail_kw"`
}

type MetricsConfig struct {
	PrometheusEnabled bool                 `json:"prometheus_enabled"`
	InfluxEnabled     bool                 `json:"influx_enabled"`
	Influx            metrics.InfluxConfig `json:"influx"`
}

type MQTTConfig struct {
	Enabled bool        `json:"enabled"`
	Conn    mqtt.Config `json:"conn"`
}

// Default returns the fully-populated baseline scenario. Loaders
// unmarshal scenario files over a copy of it, so a file only needs the
// fields it changes — and an explicit zero (days: 0, noise_std: 0) is
// kept as a zero, never mistaken for an absent field.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StepsPerDay:          24,
			Days:                 1,
			Seed:                 42,
			Houses:               1,
			Controller:           "naive",
			ImbalancePricePerKWh: 0.10,
		},
		Baseload: BaseloadConfig{
			BaseKW:   0.8,
			AmpKW:    0.7,
			PhaseRad: 1.2,
			NoiseStd: 0.05,
		},
		Solar: SolarConfig{
			Model:         "simple",
			KWPeak:        5.0,
			SunriseIdx:    6,
			SunsetIdx:     18,
			NoiseStd:      0.05,
			CloudAlpha:    0.9,
			CloudNoiseStd: 0.2,
		},
		Battery: BatteryConfig{
			CapacityKWh:    10,
			InitialSoC:     0.5,
			MaxChargeKW:    5,
			MaxDischargeKW: 5,
			EtaCharge:      0.95,
			EtaDischarge:   0.95,
		},
		EV: EVConfig{
			MaxChargeKW:   7.2,
			DemandKWhMin:  4,
			DemandKWhMax:  14,
			DwellStepsMin: 3,
			DwellStepsMax: 10,
		},
		Feeder: FeederConfig{
			MaxImportKW: 5,
			MaxExportKW: 4,
		},
		DREvents: []DREventConfig{{StartStep: 17, EndStep: 20, CurtailKW: 1.5}},
	}
}

// Validate checks cross-field consistency. It collects every problem
// rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Simulation.StepsPerDay <= 0 {
		errs = append(errs, fmt.Errorf("simulation.steps_per_day must be > 0, got %d", c.Simulation.StepsPerDay))
	}
	if c.Simulation.Days < 0 {
		errs = append(errs, fmt.Errorf("simulation.days must be >= 0, got %d", c.Simulation.Days))
	}
	if c.Simulation.Houses <= 0 {
		errs = append(errs, fmt.Errorf("simulation.houses must be > 0, got %d", c.Simulation.Houses))
	}
	switch c.Simulation.Controller {
	case "naive", "greedy":
	default:
		errs = append(errs, fmt.Errorf("simulation.controller must be naive or greedy, got %q", c.Simulation.Controller))
	}
	if c.Simulation.ImbalancePricePerKWh < 0 {
		errs = append(errs, fmt.Errorf("simulation.imbalance_price_per_kwh must be >= 0, got %v", c.Simulation.ImbalancePricePerKWh))
	}

	if c.Baseload.BaseKW < 0 || c.Baseload.NoiseStd < 0 {
		errs = append(errs, fmt.Errorf("baseload: base_kw and noise_std must be >= 0"))
	}

	switch c.Solar.Model {
	case "simple", "ar1":
	default:
		errs = append(errs, fmt.Errorf("solar.model must be simple or ar1, got %q", c.Solar.Model))
	}
	if c.Solar.SunriseIdx < 0 || c.Solar.SunriseIdx >= c.Solar.SunsetIdx || c.Solar.SunsetIdx > c.Simulation.StepsPerDay {
		errs = append(errs, fmt.Errorf("solar: need 0 <= sunrise_idx < sunset_idx <= steps_per_day, got sunrise=%d sunset=%d", c.Solar.SunriseIdx, c.Solar.SunsetIdx))
	}

	if c.Battery.CapacityKWh <= 0 {
		errs = append(errs, fmt.Errorf("battery.capacity_kwh must be > 0, got %v", c.Battery.CapacityKWh))
	}
	if c.Battery.InitialSoC < 0 || c.Battery.InitialSoC > 1 {
		errs = append(errs, fmt.Errorf("battery.initial_soc must be in [0, 1], got %v", c.Battery.InitialSoC))
	}
	for name, eta := range map[string]float64{"eta_charge": c.Battery.EtaCharge, "eta_discharge": c.Battery.EtaDischarge} {
		if eta <= 0 || eta > 1 {
			errs = append(errs, fmt.Errorf("battery.%s must be in (0, 1], got %v", name, eta))
		}
	}

	if c.EV.MaxChargeKW <= 0 {
		errs = append(errs, fmt.Errorf("ev.max_charge_kw must be > 0, got %v", c.EV.MaxChargeKW))
	}
	if c.EV.DemandKWhMin < 0 || c.EV.DemandKWhMax < c.EV.DemandKWhMin {
		errs = append(errs, fmt.Errorf("ev: need 0 <= demand_kwh_min <= demand_kwh_max"))
	}
	if c.EV.DwellStepsMin <= 0 || c.EV.DwellStepsMax < c.EV.DwellStepsMin {
		errs = append(errs, fmt.Errorf("ev: need 0 < dwell_steps_min <= dwell_steps_max"))
	}

	if c.Feeder.MaxImportKW < 0 || c.Feeder.MaxExportKW < 0 {
		errs = append(errs, fmt.Errorf("feeder: limits must be >= 0"))
	}

	for i, e := range c.DREvents {
		if e.StartStep < 0 || e.EndStep < e.StartStep {
			errs = append(errs, fmt.Errorf("dr_events[%d]: need 0 <= start_step <= end_step, got start=%d end=%d", i, e.StartStep, e.EndStep))
		}
		if e.CurtailKW < 0 || math.IsNaN(e.CurtailKW) {
			errs = append(errs, fmt.Errorf("dr_events[%d]: curtail_kw must be >= 0, got %v", i, e.CurtailKW))
		}
	}

	return errors.Join(errs...)
}
