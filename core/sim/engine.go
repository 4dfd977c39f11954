package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/jdhoffa/vpp-sim/core/device"
	corelogger "github.com/jdhoffa/vpp-sim/core/logger"
	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// Parts are the assembled site components the engine steps. Fixed
// devices are uncontrolled loads and generators: they get no setpoint
// and just realize power each step.
type Parts struct {
	Fixed      []device.Device
	EVChargers []*device.EVCharger
	Battery    *device.Battery
	Controller Controller
	Schedule   *DayAheadSchedule
	Limits     FeederLimits
	DREvents   []DemandResponseEvent
}

// Engine advances the site one timestep at a time. It is strictly
// single-threaded: devices draw from their RNGs in a fixed order, so a
// given seed always reproduces the same run. Fan-out to sinks happens
// through the OnStep hook, outside the engine.
type Engine struct {
	cfg   Config
	parts Parts
	clock *Clock
	store *telemetry.Store
	log   corelogger.Logger

	// OnStep, when set, is called synchronously after each step's
	// record has been stored.
	OnStep func(telemetry.Record)
}

func NewEngine(cfg Config, parts Parts, log corelogger.Logger, store *telemetry.Store) (*Engine, error) {
	if parts.Battery == nil {
		return nil, fmt.Errorf("engine: battery is required")
	}
	if parts.Controller == nil {
		return nil, fmt.Errorf("engine: controller is required")
	}
	if parts.Schedule == nil {
		return nil, fmt.Errorf("engine: schedule is required")
	}
	if store == nil {
		store = telemetry.NewStore()
	}
	return &Engine{
		cfg:   cfg,
		parts: parts,
		clock: NewClock(cfg.StepsPerDay),
		store: store,
		log:   log,
	}, nil
}

// Store exposes the telemetry log for exports and the API.
func (e *Engine) Store() *telemetry.Store { return e.store }

// Step executes one timestep: realize fixed devices, dispatch, apply
// setpoints, record. Returns false once the run horizon is reached.
func (e *Engine) Step() (bool, error) {
	t := e.clock.Step()
	if t >= e.cfg.TotalSteps() {
		return false, nil
	}

	ctx := device.NewContext(t)

	// Fixed devices realize first, in construction order, so the RNG
	// draw sequence is stable.
	baseloadKW, solarKW := 0.0, 0.0
	for _, d := range e.parts.Fixed {
		kw := d.PowerKW(ctx)
		if kw < 0 {
			solarKW += kw
		} else {
			baseloadKW += kw
		}
	}

	evRequestedKW := 0.0
	evRequests := make([]float64, len(e.parts.EVChargers))
	for i, ev := range e.parts.EVChargers {
		evRequests[i] = ev.RequestedKW(t)
		evRequestedKW += evRequests[i]
	}

	in := StepInput{
		Timestep:      t,
		TargetKW:      e.parts.Schedule.TargetKW(t),
		BaseloadKW:    baseloadKW,
		SolarKW:       solarKW,
		EVRequestedKW: evRequestedKW,
		BatterySoC:    e.parts.Battery.SoC,
		DRCurtailKW:   ActiveCurtailKW(e.parts.DREvents, t),
	}

	dispatch := e.parts.Controller.Dispatch(in)

	// Split the aggregate EV setpoint across chargers pro rata to
	// their requests.
	evDispatchedKW := 0.0
	for i, ev := range e.parts.EVChargers {
		if evRequests[i] <= 0 {
			continue
		}
		share := dispatch.EVSetpointKW
		if evRequestedKW > 0 {
			share = dispatch.EVSetpointKW * evRequests[i] / evRequestedKW
		}
		evDispatchedKW += ev.PowerKW(ctx.WithSetpoint(share))
	}

	batteryKW := e.parts.Battery.Apply(dispatch.BatterySetpointKW)
	feederKW := baseloadKW + solarKW + evDispatchedKW + batteryKW

	drAchievedKW := math.Min(math.Max(evRequestedKW-evDispatchedKW, 0), in.DRCurtailKW)

	result := StepResult{
		Timestep:      t,
		TimeHr:        e.cfg.TimeHr(t),
		TargetKW:      in.TargetKW,
		FeederKW:      feederKW,
		BaseloadKW:    baseloadKW,
		SolarKW:       solarKW,
		EVRequestedKW: evRequestedKW,
		EVDispatchKW:  evDispatchedKW,
		BatteryKW:     batteryKW,
		BatterySoC:    e.parts.Battery.SoC,
		DRRequestedKW: in.DRCurtailKW,
		DRAchievedKW:  drAchievedKW,
		LimitOK:       e.parts.Limits.Check(feederKW),
	}

	rec := result.Record()
	if err := e.store.Append(rec); err != nil {
		return false, err
	}
	if !result.LimitOK && e.log != nil {
		e.log.Warnf("feeder limit violated at step %d: %.2f kW", t, feederKW)
	}
	if e.OnStep != nil {
		e.OnStep(rec)
	}

	e.clock.Tick()
	return true, nil
}

// Run executes the whole horizon and returns the KPI report. The
// context cancels between steps; a cancelled run still reports over
// whatever it recorded.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	for {
		select {
		case <-ctx.Done():
			return e.Report(), ctx.Err()
		default:
		}
		ok, err := e.Step()
		if err != nil {
			return e.Report(), err
		}
		if !ok {
			break
		}
	}
	return e.Report(), nil
}

// Report aggregates KPIs over everything recorded so far.
func (e *Engine) Report() Report {
	return BuildReport(e.cfg, e.parts.Battery.CapacityKWh, e.store.Snapshot())
}
