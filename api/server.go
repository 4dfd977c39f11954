// Package api serves read-only run state and telemetry over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	corelogger "github.com/jdhoffa/vpp-sim/core/logger"
	"github.com/jdhoffa/vpp-sim/core/sim"
	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// Server exposes the current run. It reads from the telemetry store
// and never mutates simulation state, so it is safe to serve while the
// engine is stepping.
type Server struct {
	runID  string
	cfg    sim.Config
	store  *telemetry.Store
	report func() sim.Report
	log    corelogger.Logger
}

func NewServer(runID string, cfg sim.Config, store *telemetry.Store, report func() sim.Report, log corelogger.Logger) *Server {
	return &Server{runID: runID, cfg: cfg, store: store, report: report, log: log}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type stateResponse struct {
	RunID         string            `json:"run_id"`
	SchemaVersion int               `json:"schema_version"`
	StepsPerDay   int               `json:"steps_per_day"`
	Days          int               `json:"days"`
	Seed          int64             `json:"seed"`
	StepsRecorded int               `json:"steps_recorded"`
	Latest        *telemetry.Record `json:"latest"`
	KPI           sim.Report        `json:"kpi"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	resp := stateResponse{
		RunID:         s.runID,
		SchemaVersion: telemetry.SchemaVersion,
		StepsPerDay:   s.cfg.StepsPerDay,
		Days:          s.cfg.Days,
		Seed:          s.cfg.Seed,
		StepsRecorded: s.store.Len(),
		KPI:           s.report(),
	}
	if latest, ok := s.store.Latest(); ok {
		resp.Latest = &latest
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	from := 0

	q := r.URL.Query()
	var err error
	if raw := q.Get("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "from must be an integer")
			return
		}
	}
	// Default to covers everything recorded; when from is past the end
	// that means an empty window, not an inverted one.
	to := max(s.store.Len()-1, from)
	if raw := q.Get("to"); raw != "" {
		if to, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "to must be an integer")
			return
		}
	}

	records, err := s.store.Range(from, to)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if records == nil {
		records = []telemetry.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.log != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
