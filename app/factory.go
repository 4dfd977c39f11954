// Package app assembles a configured site and runs it end to end.
package app

import (
	"fmt"

	"github.com/jdhoffa/vpp-sim/config"
	"github.com/jdhoffa/vpp-sim/core/device"
	"github.com/jdhoffa/vpp-sim/core/sim"
)

// Per-house devices draw from consecutive seeds so adding a house
// never shifts the streams of existing ones.
const seedStride = 3

// buildSite turns a validated scenario into engine config and parts.
func buildSite(cfg *config.Config) (sim.Config, sim.Parts, error) {
	simCfg, err := sim.NewConfig(cfg.Simulation.StepsPerDay, cfg.Simulation.Days, cfg.Simulation.Seed)
	if err != nil {
		return sim.Config{}, sim.Parts{}, err
	}
	simCfg.Houses = cfg.Simulation.Houses
	simCfg.ImbalancePricePerKWh = cfg.Simulation.ImbalancePricePerKWh

	houses := cfg.Simulation.Houses
	fixed := make([]device.Device, 0, 2*houses)
	expected := make([]sim.ExpectedPower, 0, 2*houses)
	chargers := make([]*device.EVCharger, 0, houses)

	for h := 0; h < houses; h++ {
		base := cfg.Simulation.Seed + int64(h)*seedStride

		load, err := device.NewBaseLoad(
			cfg.Baseload.BaseKW, cfg.Baseload.AmpKW, cfg.Baseload.PhaseRad,
			cfg.Baseload.NoiseStd, cfg.Simulation.StepsPerDay, base)
		if err != nil {
			return sim.Config{}, sim.Parts{}, fmt.Errorf("app: house %d baseload: %w", h, err)
		}
		fixed = append(fixed, load)
		expected = append(expected, load)

		pv, pvExp, err := buildSolar(cfg, base+1)
		if err != nil {
			return sim.Config{}, sim.Parts{}, fmt.Errorf("app: house %d solar: %w", h, err)
		}
		fixed = append(fixed, pv)
		expected = append(expected, pvExp)

		ev, err := device.NewEVCharger(
			cfg.EV.MaxChargeKW, cfg.EV.DemandKWhMin, cfg.EV.DemandKWhMax,
			cfg.EV.DwellStepsMin, cfg.EV.DwellStepsMax, cfg.Simulation.StepsPerDay, base+2)
		if err != nil {
			return sim.Config{}, sim.Parts{}, fmt.Errorf("app: house %d ev: %w", h, err)
		}
		chargers = append(chargers, ev)
	}

	// One aggregate battery sized for the whole site.
	scale := float64(houses)
	battery, err := device.NewBattery(
		cfg.Battery.CapacityKWh*scale, cfg.Battery.InitialSoC,
		cfg.Battery.MaxChargeKW*scale, cfg.Battery.MaxDischargeKW*scale,
		cfg.Battery.EtaCharge, cfg.Battery.EtaDischarge, cfg.Simulation.StepsPerDay)
	if err != nil {
		return sim.Config{}, sim.Parts{}, fmt.Errorf("app: battery: %w", err)
	}

	limits, err := sim.NewFeederLimits(cfg.Feeder.MaxImportKW, cfg.Feeder.MaxExportKW)
	if err != nil {
		return sim.Config{}, sim.Parts{}, fmt.Errorf("app: feeder: %w", err)
	}

	forecast := sim.NewNaiveForecast(expected...)
	schedule, err := sim.BuildDayAheadSchedule(forecast, limits, simCfg.StepsPerDay, simCfg.Days)
	if err != nil {
		return sim.Config{}, sim.Parts{}, fmt.Errorf("app: schedule: %w", err)
	}

	events := make([]sim.DemandResponseEvent, 0, len(cfg.DREvents))
	for i, e := range cfg.DREvents {
		evt, err := sim.NewDemandResponseEvent(e.StartStep, e.EndStep, e.CurtailKW)
		if err != nil {
			return sim.Config{}, sim.Parts{}, fmt.Errorf("app: dr_events[%d]: %w", i, err)
		}
		events = append(events, evt)
	}

	params := sim.BatteryParams{
		CapacityKWh:    battery.CapacityKWh,
		MaxChargeKW:    battery.MaxChargeKW,
		MaxDischargeKW: battery.MaxDischargeKW,
		EtaCharge:      battery.EtaCharge,
		EtaDischarge:   battery.EtaDischarge,
		DtHours:        simCfg.DtHours(),
	}
	controller, err := buildController(cfg.Simulation.Controller, forecast, schedule, limits, params, simCfg)
	if err != nil {
		return sim.Config{}, sim.Parts{}, err
	}

	return simCfg, sim.Parts{
		Fixed:      fixed,
		EVChargers: chargers,
		Battery:    battery,
		Controller: controller,
		Schedule:   schedule,
		Limits:     limits,
		DREvents:   events,
	}, nil
}

func buildSolar(cfg *config.Config, seed int64) (device.Device, sim.ExpectedPower, error) {
	switch cfg.Solar.Model {
	case "ar1":
		pv, err := device.NewSolarPVAR1(
			cfg.Solar.KWPeak, cfg.Solar.SunriseIdx, cfg.Solar.SunsetIdx,
			cfg.Solar.CloudAlpha, cfg.Solar.CloudNoiseStd, cfg.Simulation.StepsPerDay, seed)
		return pv, pv, err
	case "simple":
		pv, err := device.NewSolarPV(
			cfg.Solar.KWPeak, cfg.Solar.SunriseIdx, cfg.Solar.SunsetIdx,
			cfg.Solar.NoiseStd, cfg.Simulation.StepsPerDay, seed)
		return pv, pv, err
	default:
		return nil, nil, fmt.Errorf("app: unknown solar model %q", cfg.Solar.Model)
	}
}

func buildController(name string, fc sim.Forecaster, sched *sim.DayAheadSchedule, limits sim.FeederLimits, params sim.BatteryParams, simCfg sim.Config) (sim.Controller, error) {
	switch name {
	case "naive":
		return sim.NewNaiveRTController(limits, params)
	case "greedy":
		return sim.NewGreedyController(fc, sched, limits, params, simCfg.StepsPerDay, simCfg.Days)
	default:
		return nil, fmt.Errorf("app: unknown controller %q", name)
	}
}
