package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendOrdered(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(Record{Timestep: i}))
	}
	assert.Equal(t, 5, s.Len())

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 4, latest.Timestep)
}

func TestStoreRejectsOutOfOrderAppend(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append(Record{Timestep: 0}))
	assert.Error(t, s.Append(Record{Timestep: 2}), "gap")
	assert.Error(t, s.Append(Record{Timestep: 0}), "duplicate")
}

func TestStoreEmptyLatest(t *testing.T) {
	s := NewStore()
	_, ok := s.Latest()
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append(Record{Timestep: 0, FeederKW: 1}))
	snap := s.Snapshot()
	snap[0].FeederKW = 99

	again := s.Snapshot()
	assert.Equal(t, 1.0, again[0].FeederKW)
}

func TestStoreRangeInclusive(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(Record{Timestep: i}))
	}

	got, err := s.Range(2, 4)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Timestep)
	assert.Equal(t, 4, got[2].Timestep)
}

func TestStoreRangeClampsBounds(t *testing.T) {
	s := NewStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(Record{Timestep: i}))
	}

	got, err := s.Range(-5, 100)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = s.Range(50, 60)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreRangeInvalid(t *testing.T) {
	s := NewStore()
	_, err := s.Range(3, 1)
	assert.Error(t, err)
}

func TestStoreConcurrentReadersDuringAppend(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Append(Record{Timestep: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Snapshot()
			_, _ = s.Latest()
		}
	}()
	wg.Wait()
	assert.Equal(t, 500, s.Len())
}
