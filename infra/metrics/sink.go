// Package metrics fans recorded telemetry out to monitoring backends.
package metrics

import "github.com/jdhoffa/vpp-sim/core/telemetry"

// Sink consumes one telemetry record per timestep. Implementations
// must tolerate being called from the simulation loop: slow backends
// buffer or drop, they never block the engine.
type Sink interface {
	Record(rec telemetry.Record)
	Close() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(telemetry.Record) {}
func (NopSink) Close() error            { return nil }

// MultiSink forwards each record to every child sink.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Record(rec telemetry.Record) {
	for _, s := range m.sinks {
		s.Record(rec)
	}
}

// Close closes all children and returns the first error.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
