package sim

import (
	"fmt"
	"math"
)

// GreedyController tracks the schedule like NaiveRTController but adds
// a feed-forward state-of-charge floor computed from the day-ahead
// curves: energy the plan needs for later deficit steps (forecast net
// above target, typically the evening peak) is reserved and may not be
// discharged early. Without the reserve a reactive dispatcher drains
// the battery on morning noise and has nothing left for the peak.
type GreedyController struct {
	limits  FeederLimits
	battery BatteryParams

	// socFloor[t] is the minimum SoC the plan wants entering step t.
	socFloor []float64
}

// NewGreedyController precomputes the SoC reserve trajectory for the
// whole run from forecast and schedule.
func NewGreedyController(fc Forecaster, sched *DayAheadSchedule, limits FeederLimits, battery BatteryParams, stepsPerDay, days int) (*GreedyController, error) {
	if battery.DtHours <= 0 {
		return nil, fmt.Errorf("controller: dt_hours must be > 0, got %v", battery.DtHours)
	}
	if stepsPerDay <= 0 || days < 0 {
		return nil, fmt.Errorf("controller: invalid horizon steps_per_day=%d days=%d", stepsPerDay, days)
	}

	total := stepsPerDay * days
	floor := make([]float64, total)

	// Walk each day backward accumulating the stored energy the plan
	// will draw at future deficit steps. The reserve resets at the day
	// boundary: each day's schedule stands on its own.
	for day := 0; day < days; day++ {
		futureKWh := 0.0
		for i := stepsPerDay - 1; i >= 0; i-- {
			t := day*stepsPerDay + i
			floor[t] = math.Min(futureKWh/battery.CapacityKWh, 1)
			deficit := math.Max(fc.PredictKW(t)-sched.TargetKW(t), 0)
			futureKWh += deficit * battery.DtHours / battery.EtaDischarge
		}
	}

	return &GreedyController{limits: limits, battery: battery, socFloor: floor}, nil
}

func (c *GreedyController) Name() string { return "greedy" }

func (c *GreedyController) Dispatch(in StepInput) StepDispatch {
	maxCharge := c.battery.chargeHeadroomKW(in.BatterySoC)

	// Discharge only down to the reserve floor for this step.
	floor := 0.0
	if in.Timestep >= 0 && in.Timestep < len(c.socFloor) {
		floor = c.socFloor[in.Timestep]
	}
	aboveFloor := math.Max(in.BatterySoC-floor, 0) * c.battery.CapacityKWh * c.battery.EtaDischarge / c.battery.DtHours
	maxDischarge := math.Min(c.battery.dischargeAvailKW(in.BatterySoC), aboveFloor)

	return dispatchTracking(in, c.limits, maxCharge, maxDischarge)
}
