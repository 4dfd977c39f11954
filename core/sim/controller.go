package sim

import (
	"fmt"
	"math"
)

// Controller decides the battery and EV setpoints for one timestep from
// the observable state. Implementations must be deterministic.
type Controller interface {
	Dispatch(in StepInput) StepDispatch
	Name() string
}

// BatteryParams is the battery model as seen by a controller: ratings
// plus the energy parameters needed to turn an observed SoC into power
// headroom for one step.
type BatteryParams struct {
	CapacityKWh    float64
	MaxChargeKW    float64
	MaxDischargeKW float64
	EtaCharge      float64
	EtaDischarge   float64
	DtHours        float64
}

// chargeHeadroomKW is the charging power the battery can absorb this
// step at the given SoC.
func (p BatteryParams) chargeHeadroomKW(soc float64) float64 {
	head := (1 - soc) * p.CapacityKWh / (p.EtaCharge * p.DtHours)
	return math.Min(p.MaxChargeKW, math.Max(head, 0))
}

// dischargeAvailKW is the discharging power the battery can sustain
// this step at the given SoC.
func (p BatteryParams) dischargeAvailKW(soc float64) float64 {
	avail := soc * p.CapacityKWh * p.EtaDischarge / p.DtHours
	return math.Min(p.MaxDischargeKW, math.Max(avail, 0))
}

// NaiveRTController is a purely reactive dispatcher. Each step it
// curtails the EV per active demand response, trims the EV further if
// serving it would overload the import limit even at full battery
// discharge, then commands the battery to close the gap between the
// schedule target and the net load, within rating, SoC headroom and
// feeder limits.
type NaiveRTController struct {
	limits  FeederLimits
	battery BatteryParams
}

func NewNaiveRTController(limits FeederLimits, battery BatteryParams) (*NaiveRTController, error) {
	if battery.DtHours <= 0 {
		return nil, fmt.Errorf("controller: dt_hours must be > 0, got %v", battery.DtHours)
	}
	return &NaiveRTController{limits: limits, battery: battery}, nil
}

func (c *NaiveRTController) Name() string { return "naive_rt" }

func (c *NaiveRTController) Dispatch(in StepInput) StepDispatch {
	maxCharge := c.battery.chargeHeadroomKW(in.BatterySoC)
	maxDischarge := c.battery.dischargeAvailKW(in.BatterySoC)
	return dispatchTracking(in, c.limits, maxCharge, maxDischarge)
}

// dispatchTracking is the shared schedule-tracking core: EV first, then
// a battery setpoint clamped into the feasible feeder band.
func dispatchTracking(in StepInput, limits FeederLimits, maxChargeKW, maxDischargeKW float64) StepDispatch {
	netFixed := in.BaseloadKW + in.SolarKW

	// Demand response sheds flexible load only.
	evAfterDR := math.Max(in.EVRequestedKW-in.DRCurtailKW, 0)

	// If even a full battery discharge cannot keep the import limit,
	// trim the EV by the overload.
	overload := math.Max(netFixed+evAfterDR-maxDischargeKW-limits.MaxImportKW, 0)
	evSetpoint := math.Max(evAfterDR-overload, 0)

	net := netFixed + evSetpoint
	desired := in.TargetKW - net

	lo := math.Max(-maxDischargeKW, -limits.MaxExportKW-net)
	hi := math.Min(maxChargeKW, limits.MaxImportKW-net)

	var batterySetpoint float64
	if lo <= hi {
		batterySetpoint = math.Min(math.Max(desired, lo), hi)
	} else {
		// Feeder band unreachable at any battery power; fall back to
		// the battery's own envelope and let the limit check flag it.
		batterySetpoint = math.Min(math.Max(desired, -maxDischargeKW), maxChargeKW)
	}

	return StepDispatch{
		BatterySetpointKW: batterySetpoint,
		EVSetpointKW:      evSetpoint,
	}
}
