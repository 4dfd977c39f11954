// Package device contains the stochastic site device models driven by the
// simulation engine: baseload demand, solar PV generation, flexible EV
// charging and battery storage.
//
// All power values follow the feeder sign convention: positive kW is
// consumption (import), negative kW is generation (export). Every device
// owns its own seeded random generator so runs are reproducible and
// devices stay testable in isolation.
package device

import (
	"math"
	"math/rand"
)

// Context carries the per-step inputs handed to a device.
type Context struct {
	Timestep int
	// SetpointKW is the dispatch command for controllable devices.
	// Nil means the device acts on its own request.
	SetpointKW *float64
}

// NewContext returns a Context for the given timestep with no setpoint.
func NewContext(timestep int) Context {
	return Context{Timestep: timestep}
}

// WithSetpoint returns a copy of the Context carrying a dispatch setpoint.
func (c Context) WithSetpoint(setpointKW float64) Context {
	c.SetpointKW = &setpointKW
	return c
}

// Device is a producer or consumer of electric power.
type Device interface {
	// PowerKW returns the power at the given step in feeder convention
	// (positive = consumption, negative = generation). Devices with
	// internal state advance it on every call.
	PowerKW(ctx Context) float64

	// Kind returns a human-readable device type name.
	Kind() string
}

var (
	_ Device = (*BaseLoad)(nil)
	_ Device = (*SolarPV)(nil)
	_ Device = (*SolarPVAR1)(nil)
	_ Device = (*Battery)(nil)
	_ Device = (*EVCharger)(nil)
)

// DaylightFrac returns the bell-shaped irradiance fraction for timestep t,
// zero outside [sunrise, sunset) within the day cycle and a sine arch
// peaking midway between sunrise and sunset inside it.
func DaylightFrac(t, stepsPerDay, sunriseIdx, sunsetIdx int) float64 {
	dayT := t % stepsPerDay
	if dayT < sunriseIdx || dayT >= sunsetIdx {
		return 0
	}
	span := float64(sunsetIdx - sunriseIdx)
	pos := float64(dayT-sunriseIdx) / span
	return math.Sin(math.Pi * pos)
}

// gaussianNoise draws one sample from N(0, std). A non-positive std
// yields exactly zero so noise-free scenarios stay bit-deterministic.
func gaussianNoise(rng *rand.Rand, std float64) float64 {
	if std <= 0 {
		return 0
	}
	return rng.NormFloat64() * std
}
