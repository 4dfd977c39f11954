package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdhoffa/vpp-sim/core/device"
	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// buildEngine wires a noise-free one-day site. Callers tweak the parts.
func buildEngine(t *testing.T, cfg Config, mutate func(*Parts)) *Engine {
	t.Helper()

	load, err := device.NewBaseLoad(1.0, 0, 0, 0, cfg.StepsPerDay, cfg.Seed)
	require.NoError(t, err)
	battery, err := device.NewBattery(10, 0.5, 5, 5, 1, 1, cfg.StepsPerDay)
	require.NoError(t, err)

	limits, err := NewFeederLimits(5, 4)
	require.NoError(t, err)
	fc := NewNaiveForecast(load)
	sched, err := BuildDayAheadSchedule(fc, limits, cfg.StepsPerDay, cfg.Days)
	require.NoError(t, err)

	params := BatteryParams{
		CapacityKWh:    battery.CapacityKWh,
		MaxChargeKW:    battery.MaxChargeKW,
		MaxDischargeKW: battery.MaxDischargeKW,
		EtaCharge:      battery.EtaCharge,
		EtaDischarge:   battery.EtaDischarge,
		DtHours:        cfg.DtHours(),
	}
	ctrl, err := NewNaiveRTController(limits, params)
	require.NoError(t, err)

	parts := Parts{
		Fixed:      []device.Device{load},
		Battery:    battery,
		Controller: ctrl,
		Schedule:   sched,
		Limits:     limits,
	}
	if mutate != nil {
		mutate(&parts)
	}

	eng, err := NewEngine(cfg, parts, nil, telemetry.NewStore())
	require.NoError(t, err)
	return eng
}

func TestEngineFlatBaselineTracksExactly(t *testing.T) {
	cfg, err := NewConfig(24, 1, 42)
	require.NoError(t, err)
	eng := buildEngine(t, cfg, nil)

	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	records := eng.Store().Snapshot()
	require.Len(t, records, 24)
	for _, rec := range records {
		assert.InDelta(t, 1.0, rec.TargetKW, 1e-9)
		assert.InDelta(t, 1.0, rec.FeederKW, 1e-9)
		assert.InDelta(t, 0.0, rec.TrackingErrorKW, 1e-9)
		assert.True(t, rec.LimitOK)
	}
	assert.InDelta(t, 0.0, report.MAEKW, 1e-9)
	assert.Zero(t, report.LimitViolations)
}

func TestEngineBatteryChargesTowardHighTarget(t *testing.T) {
	cfg, err := NewConfig(24, 1, 42)
	require.NoError(t, err)

	eng := buildEngine(t, cfg, func(p *Parts) {
		// Commit to importing 4 kW against a 1 kW load: a 3 kW desired
		// charge, above the 2 kW rating, leaving a 1 kW shortfall.
		limits, _ := NewFeederLimits(5, 4)
		sched, _ := BuildDayAheadSchedule(constForecast{kw: 4}, limits, 24, 1)
		p.Schedule = sched

		batt, _ := device.NewBattery(100, 0, 2, 2, 1, 1, 24)
		p.Battery = batt
		ctrl, _ := NewNaiveRTController(limits, BatteryParams{
			CapacityKWh: 100, MaxChargeKW: 2, MaxDischargeKW: 2,
			EtaCharge: 1, EtaDischarge: 1, DtHours: 1,
		})
		p.Controller = ctrl
	})

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range eng.Store().Snapshot() {
		assert.InDelta(t, 2.0, rec.BatteryKW, 1e-9, "charge pinned at rating")
		assert.InDelta(t, 3.0, rec.FeederKW, 1e-9)
		assert.InDelta(t, -1.0, rec.TrackingErrorKW, 1e-9, "1 kW shortfall below target")
	}
}

func TestEngineDemandResponseCurtailsEVOnly(t *testing.T) {
	cfg, err := NewConfig(24, 1, 42)
	require.NoError(t, err)

	eng := buildEngine(t, cfg, func(p *Parts) {
		ev, err := device.NewEVCharger(7.2, 10, 10, 24, 24, 24, 42)
		require.NoError(t, err)
		p.EVChargers = []*device.EVCharger{ev}
		evt, _ := NewDemandResponseEvent(0, 23, 100)
		p.DREvents = []DemandResponseEvent{evt}
	})

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range eng.Store().Snapshot() {
		assert.Zero(t, rec.EVDispatchedKW, "full curtailment stops all charging")
		assert.InDelta(t, rec.EVRequestedKW, rec.DRAchievedKW, 1e-9)
		assert.InDelta(t, 1.0, rec.BaseloadKW, 1e-9, "baseload is never shed")
	}
}

func TestEngineDRAchievedBoundedByRequest(t *testing.T) {
	cfg, err := NewConfig(24, 1, 42)
	require.NoError(t, err)

	eng := buildEngine(t, cfg, func(p *Parts) {
		ev, err := device.NewEVCharger(7.2, 10, 10, 24, 24, 24, 42)
		require.NoError(t, err)
		p.EVChargers = []*device.EVCharger{ev}
		drv, _ := NewDemandResponseEvent(17, 20, 1.5)
		p.DREvents = []DemandResponseEvent{drv}
	})

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range eng.Store().Snapshot() {
		if rec.Timestep >= 17 && rec.Timestep <= 20 {
			assert.InDelta(t, 1.5, rec.DRRequestedKW, 1e-9)
			assert.LessOrEqual(t, rec.DRAchievedKW, rec.DRRequestedKW+1e-9)
			assert.LessOrEqual(t, rec.DRAchievedKW, rec.EVRequestedKW+1e-9)
		} else {
			assert.Zero(t, rec.DRRequestedKW)
			assert.Zero(t, rec.DRAchievedKW)
		}
	}
}

func TestEngineSeedDeterminism(t *testing.T) {
	build := func() []telemetry.Record {
		cfg, err := NewConfig(24, 2, 7)
		require.NoError(t, err)
		eng := buildEngine(t, cfg, func(p *Parts) {
			load, _ := device.NewBaseLoad(0.8, 0.7, 1.2, 0.05, 24, 7)
			pv, _ := device.NewSolarPV(5, 6, 18, 0.05, 24, 8)
			p.Fixed = []device.Device{load, pv}
			ev, _ := device.NewEVCharger(7.2, 4, 14, 3, 10, 24, 9)
			p.EVChargers = []*device.EVCharger{ev}
		})
		_, err = eng.Run(context.Background())
		require.NoError(t, err)
		return eng.Store().Snapshot()
	}

	assert.Equal(t, build(), build())
}

func TestEngineSoCInvariantUnderStress(t *testing.T) {
	cfg, err := NewConfig(24, 3, 42)
	require.NoError(t, err)

	eng := buildEngine(t, cfg, func(p *Parts) {
		load, _ := device.NewBaseLoad(2, 2, 0, 0.5, 24, 42)
		pv, _ := device.NewSolarPV(8, 6, 18, 0.3, 24, 43)
		p.Fixed = []device.Device{load, pv}
		batt, _ := device.NewBattery(3, 0.9, 5, 5, 0.9, 0.9, 24)
		p.Battery = batt
	})

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range eng.Store().Snapshot() {
		assert.GreaterOrEqual(t, rec.BatterySoC, 0.0, "step %d", rec.Timestep)
		assert.LessOrEqual(t, rec.BatterySoC, 1.0, "step %d", rec.Timestep)
	}
}

func TestEngineLimitFlagMatchesFeederPower(t *testing.T) {
	cfg, err := NewConfig(24, 2, 11)
	require.NoError(t, err)

	eng := buildEngine(t, cfg, func(p *Parts) {
		// Tight limits plus a big noisy load force some violations.
		limits, _ := NewFeederLimits(1.5, 1.5)
		p.Limits = limits
		load, _ := device.NewBaseLoad(2, 1, 0, 0.8, 24, 11)
		p.Fixed = []device.Device{load}
	})

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range eng.Store().Snapshot() {
		want := rec.FeederKW <= 1.5 && rec.FeederKW >= -1.5
		assert.Equal(t, want, rec.LimitOK, "step %d feeder=%v", rec.Timestep, rec.FeederKW)
	}
}

func TestEngineEmptyRunReportsNoData(t *testing.T) {
	cfg, err := NewConfig(24, 0, 42)
	require.NoError(t, err)
	eng := buildEngine(t, cfg, nil)

	report, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.NoData)
	assert.Zero(t, eng.Store().Len())
}

func TestEngineRunStopsOnCancelledContext(t *testing.T) {
	cfg, err := NewConfig(24, 100, 42)
	require.NoError(t, err)
	eng := buildEngine(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, eng.Store().Len())
}

func TestEngineOnStepHookSeesEveryRecord(t *testing.T) {
	cfg, err := NewConfig(24, 1, 42)
	require.NoError(t, err)
	eng := buildEngine(t, cfg, nil)

	var seen []int
	eng.OnStep = func(rec telemetry.Record) { seen = append(seen, rec.Timestep) }

	_, err = eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, seen, 24)
	for i, ts := range seen {
		assert.Equal(t, i, ts)
	}
}
