// Package sim contains the discrete-time site simulation: the engine
// stepping stochastic devices, the dispatch controllers tracking a
// day-ahead schedule under feeder limits, and the end-of-run KPIs.
//
// All powers follow the feeder convention: positive kW is consumption
// (import), negative kW is generation (export).
package sim

import (
	"fmt"

	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// Config holds the engine-level run parameters. Device parameters live
// with the devices themselves.
type Config struct {
	StepsPerDay int
	Days        int
	Seed        int64

	// Houses scales the baseload/solar/EV fleet built by the factory.
	Houses int

	// ImbalancePricePerKWh converts absolute tracking error into the
	// imbalance cost KPI.
	ImbalancePricePerKWh float64
}

// NewConfig validates engine parameters. Days may be zero: an empty run
// is legal and produces a no-data KPI report.
func NewConfig(stepsPerDay, days int, seed int64) (Config, error) {
	if stepsPerDay <= 0 {
		return Config{}, fmt.Errorf("sim: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	if days < 0 {
		return Config{}, fmt.Errorf("sim: days must be >= 0, got %d", days)
	}
	return Config{StepsPerDay: stepsPerDay, Days: days, Seed: seed, Houses: 1}, nil
}

// TotalSteps is the number of timesteps the run will execute.
func (c Config) TotalSteps() int { return c.StepsPerDay * c.Days }

// DtHours is the duration of one timestep in hours.
func (c Config) DtHours() float64 { return 24 / float64(c.StepsPerDay) }

// TimeHr converts a timestep index to hours since run start.
func (c Config) TimeHr(t int) float64 { return float64(t) * c.DtHours() }

// StepInput is everything the controller may observe when deciding the
// dispatch for one timestep. Realized noise is visible only through the
// fixed (already-happened) powers, never through the forecast.
type StepInput struct {
	Timestep      int
	TargetKW      float64
	BaseloadKW    float64
	SolarKW       float64
	EVRequestedKW float64
	BatterySoC    float64

	// DRCurtailKW is the total shed requested by all demand-response
	// events active at this timestep.
	DRCurtailKW float64
}

// StepDispatch is the controller's decision: setpoints for the two
// controllable devices.
type StepDispatch struct {
	BatterySetpointKW float64
	EVSetpointKW      float64
}

// StepResult is the fully realized outcome of one engine step.
type StepResult struct {
	Timestep      int
	TimeHr        float64
	TargetKW      float64
	FeederKW      float64
	BaseloadKW    float64
	SolarKW       float64
	EVRequestedKW float64
	EVDispatchKW  float64
	BatteryKW     float64
	BatterySoC    float64
	DRRequestedKW float64
	DRAchievedKW  float64
	LimitOK       bool
}

// Record converts a step outcome into the schema v1 telemetry record.
func (r StepResult) Record() telemetry.Record {
	return telemetry.Record{
		Timestep:        r.Timestep,
		TimeHr:          r.TimeHr,
		TargetKW:        r.TargetKW,
		FeederKW:        r.FeederKW,
		TrackingErrorKW: r.FeederKW - r.TargetKW,
		BaseloadKW:      r.BaseloadKW,
		SolarKW:         r.SolarKW,
		EVRequestedKW:   r.EVRequestedKW,
		EVDispatchedKW:  r.EVDispatchKW,
		BatteryKW:       r.BatteryKW,
		BatterySoC:      r.BatterySoC,
		DRRequestedKW:   r.DRRequestedKW,
		DRAchievedKW:    r.DRAchievedKW,
		LimitOK:         r.LimitOK,
	}
}
