package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// PrometheusSink exposes the latest telemetry as gauges plus a
// violation counter on the given registerer.
type PrometheusSink struct {
	feederKW        prometheus.Gauge
	targetKW        prometheus.Gauge
	trackingErrorKW prometheus.Gauge
	baseloadKW      prometheus.Gauge
	solarKW         prometheus.Gauge
	evDispatchedKW  prometheus.Gauge
	batteryKW       prometheus.Gauge
	batterySoC      prometheus.Gauge
	drRequestedKW   prometheus.Gauge
	limitViolations prometheus.Counter
}

// NewPrometheusSink registers the site gauges. Re-registering on the
// same registerer reuses the existing collectors, so repeated runs in
// one process are safe.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{}
	var err error

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.feederKW, "site_feeder_kw", "Realized feeder power (positive = import)."},
		{&s.targetKW, "site_target_kw", "Day-ahead schedule target."},
		{&s.trackingErrorKW, "site_tracking_error_kw", "Feeder power minus schedule target."},
		{&s.baseloadKW, "site_baseload_kw", "Uncontrolled building load."},
		{&s.solarKW, "site_solar_kw", "Solar generation (negative)."},
		{&s.evDispatchedKW, "site_ev_dispatched_kw", "EV charging power after dispatch."},
		{&s.batteryKW, "site_battery_kw", "Battery power (positive = charging)."},
		{&s.batterySoC, "site_battery_soc", "Battery state of charge in [0,1]."},
		{&s.drRequestedKW, "site_dr_requested_kw", "Active demand-response curtailment request."},
	}
	for _, g := range gauges {
		if *g.dst, err = registerGauge(reg, g.name, g.help); err != nil {
			return nil, err
		}
	}

	s.limitViolations, err = registerCounter(reg, "site_feeder_limit_violations_total", "Timesteps where the feeder limit was violated.")
	if err != nil {
		return nil, err
	}
	return s, nil
}

func registerGauge(reg prometheus.Registerer, name, help string) (prometheus.Gauge, error) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return g, nil
}

func registerCounter(reg prometheus.Registerer, name, help string) (prometheus.Counter, error) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return c, nil
}

func (s *PrometheusSink) Record(rec telemetry.Record) {
	s.feederKW.Set(rec.FeederKW)
	s.targetKW.Set(rec.TargetKW)
	s.trackingErrorKW.Set(rec.TrackingErrorKW)
	s.baseloadKW.Set(rec.BaseloadKW)
	s.solarKW.Set(rec.SolarKW)
	s.evDispatchedKW.Set(rec.EVDispatchedKW)
	s.batteryKW.Set(rec.BatteryKW)
	s.batterySoC.Set(rec.BatterySoC)
	s.drRequestedKW.Set(rec.DRRequestedKW)
	if !rec.LimitOK {
		s.limitViolations.Inc()
	}
}

func (s *PrometheusSink) Close() error { return nil }
