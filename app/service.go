package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdhoffa/vpp-sim/api"
	"github.com/jdhoffa/vpp-sim/config"
	corelogger "github.com/jdhoffa/vpp-sim/core/logger"
	"github.com/jdhoffa/vpp-sim/core/sim"
	"github.com/jdhoffa/vpp-sim/core/telemetry"
	"github.com/jdhoffa/vpp-sim/infra/export"
	infralogger "github.com/jdhoffa/vpp-sim/infra/logger"
	"github.com/jdhoffa/vpp-sim/infra/metrics"
	"github.com/jdhoffa/vpp-sim/infra/mqtt"
	"github.com/jdhoffa/vpp-sim/internal/eventbus"
)

// Options are the per-invocation knobs layered on top of the scenario.
type Options struct {
	// TelemetryOut, when set, receives the full run as schema v1 CSV.
	TelemetryOut string
	// APIBind, when set, serves the read-only HTTP API during the run.
	APIBind string
	// Quiet suppresses the per-step progress log.
	Quiet bool
}

// Service owns one simulation run: engine, telemetry store, sinks and
// the optional API server. Independent services can run concurrently
// in one process; nothing here is global.
type Service struct {
	runID  string
	cfg    *config.Config
	opts   Options
	simCfg sim.Config
	engine *sim.Engine
	store  *telemetry.Store
	log    corelogger.Logger
}

// New assembles a service from a validated scenario.
func New(cfg *config.Config, opts Options) (*Service, error) {
	simCfg, parts, err := buildSite(cfg)
	if err != nil {
		return nil, err
	}

	log := infralogger.New("service")
	store := telemetry.NewStore()
	engine, err := sim.NewEngine(simCfg, parts, infralogger.New("engine"), store)
	if err != nil {
		return nil, err
	}

	return &Service{
		runID:  uuid.NewString(),
		cfg:    cfg,
		opts:   opts,
		simCfg: simCfg,
		engine: engine,
		store:  store,
		log:    log,
	}, nil
}

// RunID identifies this run in logs, metrics tags and the MQTT topic.
func (s *Service) RunID() string { return s.runID }

// Run executes the whole scenario and returns the KPI report.
func (s *Service) Run(ctx context.Context) (sim.Report, error) {
	s.log.Infof("run %s starting: %d steps (%d days x %d steps/day), controller=%s",
		s.runID, s.simCfg.TotalSteps(), s.simCfg.Days, s.simCfg.StepsPerDay, s.cfg.Simulation.Controller)

	sink, err := s.buildSink()
	if err != nil {
		return sim.Report{}, err
	}

	// Telemetry fans out through the bus so a slow sink can only drop
	// its own records, never stall the engine.
	bus := eventbus.New[telemetry.Record](256)
	sub := bus.Subscribe()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for rec := range sub {
			sink.Record(rec)
			if !s.opts.Quiet {
				s.log.Debugf("step %d feeder=%.2f kW target=%.2f kW soc=%.2f",
					rec.Timestep, rec.FeederKW, rec.TargetKW, rec.BatterySoC)
			}
		}
	}()
	s.engine.OnStep = bus.Publish

	stopAPI, err := s.startAPI()
	if err != nil {
		bus.Close()
		<-drained
		_ = sink.Close()
		return sim.Report{}, err
	}

	report, runErr := s.engine.Run(ctx)

	bus.Close()
	<-drained
	if err := sink.Close(); err != nil {
		s.log.Warnf("closing sinks: %v", err)
	}
	stopAPI()

	if s.opts.TelemetryOut != "" {
		if err := export.WriteCSVFile(s.opts.TelemetryOut, s.store.Snapshot()); err != nil {
			return report, err
		}
		s.log.Infof("telemetry written to %s (%d records)", s.opts.TelemetryOut, s.store.Len())
	}

	s.logReport(report)
	return report, runErr
}

func (s *Service) buildSink() (metrics.Sink, error) {
	sinks := []metrics.Sink{}

	if s.cfg.Metrics.PrometheusEnabled {
		prom, err := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if s.cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSink(s.cfg.Metrics.Influx, s.runID))
	}
	if s.cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(s.cfg.MQTT.Conn, s.runID, infralogger.New("mqtt"))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pub)
	}

	if len(sinks) == 0 {
		return metrics.NopSink{}, nil
	}
	return metrics.NewMultiSink(sinks...), nil
}

// startAPI serves /state, /telemetry and (when Prometheus is on)
// /metrics. The returned func shuts the server down.
func (s *Service) startAPI() (func(), error) {
	if s.opts.APIBind == "" {
		return func() {}, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(s.runID, s.simCfg, s.store, s.engine.Report, infralogger.New("api")).Handler())
	if s.cfg.Metrics.PrometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{Addr: s.opts.APIBind, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("api server: %v", err)
			errCh <- err
		}
	}()

	// Give an unbindable address a moment to fail fast.
	select {
	case err := <-errCh:
		return nil, fmt.Errorf("app: api listen on %s: %w", s.opts.APIBind, err)
	case <-time.After(50 * time.Millisecond):
	}

	s.log.Infof("api listening on %s", s.opts.APIBind)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func (s *Service) logReport(r sim.Report) {
	if r.NoData {
		s.log.Warnf("run %s finished with no recorded steps", s.runID)
		return
	}
	s.log.Infow("run finished", map[string]any{
		"run_id":            s.runID,
		"steps":             r.Steps,
		"mae_kw":            r.MAEKW,
		"rmse_kw":           r.RMSEKW,
		"peak_import_kw":    r.PeakImportKW,
		"peak_export_kw":    r.PeakExportKW,
		"imported_kwh":      r.ImportedKWh,
		"exported_kwh":      r.ExportedKWh,
		"battery_cycles":    r.BatteryCycles,
		"final_soc":         r.FinalSoC,
		"limit_violations":  r.LimitViolations,
		"dr_requested":      r.DRRequested,
		"dr_delivered_frac": r.DRDeliveredFrac,
		"imbalance_cost":    r.ImbalanceCost,
	})
}
