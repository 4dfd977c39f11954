package device

import (
	"fmt"
	"math"
	"math/rand"
)

type evSession struct {
	arrivalStep  int
	deadlineStep int
	remainingKWh float64
}

// EVCharger is a flexible charging load with one random session per
// simulated day: random arrival, dwell (which sets the deadline) and
// required energy. The device only reports its unconstrained request;
// the controller decides the dispatched power via the setpoint cap.
type EVCharger struct {
	MaxChargeKW   float64
	DemandKWhMin  float64
	DemandKWhMax  float64
	DwellStepsMin int
	DwellStepsMax int

	stepsPerDay int
	dtHours     float64
	sampledDay  int
	session     *evSession
	rng         *rand.Rand
}

// NewEVCharger builds an EV charging load.
func NewEVCharger(maxChargeKW, demandKWhMin, demandKWhMax float64, dwellStepsMin, dwellStepsMax, stepsPerDay int, seed int64) (*EVCharger, error) {
	if maxChargeKW <= 0 {
		return nil, fmt.Errorf("ev: max_charge_kw must be > 0, got %v", maxChargeKW)
	}
	if demandKWhMin < 0 || demandKWhMax < demandKWhMin {
		return nil, fmt.Errorf("ev: need 0 <= demand_kwh_min <= demand_kwh_max, got min=%v max=%v", demandKWhMin, demandKWhMax)
	}
	if dwellStepsMin <= 0 || dwellStepsMax < dwellStepsMin {
		return nil, fmt.Errorf("ev: need 0 < dwell_steps_min <= dwell_steps_max, got min=%d max=%d", dwellStepsMin, dwellStepsMax)
	}
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("ev: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	return &EVCharger{
		MaxChargeKW:   maxChargeKW,
		DemandKWhMin:  demandKWhMin,
		DemandKWhMax:  demandKWhMax,
		DwellStepsMin: dwellStepsMin,
		DwellStepsMax: dwellStepsMax,
		stepsPerDay:   stepsPerDay,
		dtHours:       24 / float64(stepsPerDay),
		sampledDay:    -1,
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

func (e *EVCharger) sampleSessionForDay(day int) {
	dwellMax := min(e.DwellStepsMax, e.stepsPerDay)
	dwellMin := min(e.DwellStepsMin, dwellMax)
	dwell := dwellMin + e.rng.Intn(dwellMax-dwellMin+1)

	latestArrival := e.stepsPerDay - dwell
	arrival := e.rng.Intn(latestArrival + 1)

	// Demand beyond what the rating can deliver in the dwell window is
	// infeasible by construction; cap it.
	maxDeliverable := e.MaxChargeKW * e.dtHours * float64(dwell)
	raw := e.DemandKWhMin + e.rng.Float64()*(e.DemandKWhMax-e.DemandKWhMin)
	demand := math.Max(math.Min(raw, maxDeliverable), 0)

	e.sampledDay = day
	e.session = &evSession{
		arrivalStep:  arrival,
		deadlineStep: arrival + dwell,
		remainingKWh: demand,
	}
}

// RequestedKW returns the unconstrained charging request at the given
// timestep: the minimum constant power that still meets the remaining
// energy by the session deadline.
func (e *EVCharger) RequestedKW(t int) float64 {
	day := t / e.stepsPerDay
	dayT := t % e.stepsPerDay

	if e.sampledDay != day {
		e.sampleSessionForDay(day)
	}

	s := e.session
	if s == nil || dayT < s.arrivalStep || dayT >= s.deadlineStep || s.remainingKWh <= 0 {
		return 0
	}

	remainingSteps := s.deadlineStep - dayT
	return math.Max(s.remainingKWh/(float64(remainingSteps)*e.dtHours), 0)
}

// PowerKW returns the actual charging power after applying the setpoint
// cap and debits the session's remaining energy.
func (e *EVCharger) PowerKW(ctx Context) float64 {
	requested := e.RequestedKW(ctx.Timestep)
	if requested <= 0 {
		return 0
	}

	cap := e.MaxChargeKW
	if ctx.SetpointKW != nil {
		cap = math.Max(*ctx.SetpointKW, 0)
	}
	charge := math.Max(math.Min(math.Min(requested, cap), e.MaxChargeKW), 0)

	e.session.remainingKWh = math.Max(e.session.remainingKWh-charge*e.dtHours, 0)
	return charge
}

func (e *EVCharger) Kind() string { return "EVCharger" }
