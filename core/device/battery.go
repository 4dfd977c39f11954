package device

import (
	"fmt"
	"math"
)

// Battery is a stationary storage unit tracking state of charge.
//
// Power follows the feeder convention: positive = charging (load on the
// feeder), negative = discharging (generation). Commands are clamped to
// the power rating and the energy headroom implied by the current state
// of charge BEFORE being applied, so SoC can never leave [0, 1].
type Battery struct {
	CapacityKWh    float64
	SoC            float64
	MaxChargeKW    float64
	MaxDischargeKW float64
	EtaCharge      float64
	EtaDischarge   float64

	dtHours float64
}

// NewBattery builds a battery. Efficiencies are fractions in (0, 1].
func NewBattery(capacityKWh, initialSoC, maxChargeKW, maxDischargeKW, etaCharge, etaDischarge float64, stepsPerDay int) (*Battery, error) {
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("battery: capacity_kwh must be > 0, got %v", capacityKWh)
	}
	if initialSoC < 0 || initialSoC > 1 {
		return nil, fmt.Errorf("battery: initial_soc must be in [0, 1], got %v", initialSoC)
	}
	if maxChargeKW < 0 || maxDischargeKW < 0 {
		return nil, fmt.Errorf("battery: power ratings must be >= 0, got charge=%v discharge=%v", maxChargeKW, maxDischargeKW)
	}
	if etaCharge <= 0 || etaCharge > 1 || etaDischarge <= 0 || etaDischarge > 1 {
		return nil, fmt.Errorf("battery: efficiencies must be in (0, 1], got eta_c=%v eta_d=%v", etaCharge, etaDischarge)
	}
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("battery: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	return &Battery{
		CapacityKWh:    capacityKWh,
		SoC:            initialSoC,
		MaxChargeKW:    maxChargeKW,
		MaxDischargeKW: maxDischargeKW,
		EtaCharge:      etaCharge,
		EtaDischarge:   etaDischarge,
		dtHours:        24 / float64(stepsPerDay),
	}, nil
}

// Apply clamps the commanded power to rating and SoC headroom, mutates
// state of charge for one timestep and returns the power actually
// delivered. The difference between command and return value is the
// dispatch shortfall visible as tracking error.
func (b *Battery) Apply(setpointKW float64) float64 {
	switch {
	case setpointKW > 0: // charge
		p := math.Min(setpointKW, b.MaxChargeKW)
		// kWh that still fit, seen from the grid side of the charger.
		headroomKW := (1 - b.SoC) * b.CapacityKWh / (b.EtaCharge * b.dtHours)
		p = math.Min(p, math.Max(headroomKW, 0))
		b.SoC += p * b.dtHours * b.EtaCharge / b.CapacityKWh
		b.SoC = clamp01(b.SoC)
		return p
	case setpointKW < 0: // discharge
		p := math.Min(-setpointKW, b.MaxDischargeKW)
		availKW := b.SoC * b.CapacityKWh * b.EtaDischarge / b.dtHours
		p = math.Min(p, math.Max(availKW, 0))
		b.SoC -= p * b.dtHours / (b.CapacityKWh * b.EtaDischarge)
		b.SoC = clamp01(b.SoC)
		return -p
	default:
		return 0
	}
}

// PowerKW implements Device; the setpoint defaults to zero (idle).
func (b *Battery) PowerKW(ctx Context) float64 {
	if ctx.SetpointKW == nil {
		return 0
	}
	return b.Apply(*ctx.SetpointKW)
}

func (b *Battery) Kind() string { return "Battery" }

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
