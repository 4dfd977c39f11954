package telemetry

import (
	"fmt"
	"sync"
)

// Store is an append-only, thread-safe record log. The simulation
// goroutine appends; export and API readers take snapshots. Records are
// ordered by timestep and appending out of order is an error.
type Store struct {
	mu      sync.RWMutex
	records []Record
}

func NewStore() *Store {
	return &Store{}
}

// Append adds the next record. The record's timestep must equal the
// current length, which keeps the log gap-free and strictly ordered.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Timestep != len(s.records) {
		return fmt.Errorf("telemetry: out-of-order append: got timestep %d, want %d", r.Timestep, len(s.records))
	}
	s.records = append(s.records, r)
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Latest returns the most recent record, or false when the store is
// empty.
func (s *Store) Latest() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Snapshot copies all records currently in the store.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Range returns records with from <= timestep <= to. Bounds are clamped
// to the stored range; from > to is an error.
func (s *Store) Range(from, to int) ([]Record, error) {
	if from > to {
		return nil, fmt.Errorf("telemetry: invalid range: from=%d > to=%d", from, to)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	if to >= len(s.records) {
		to = len(s.records) - 1
	}
	if from > to {
		return []Record{}, nil
	}
	out := make([]Record, to-from+1)
	copy(out, s.records[from:to+1])
	return out, nil
}
