package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEVChargerRequestZeroOutsideSession(t *testing.T) {
	ev, err := NewEVCharger(7.2, 4, 14, 3, 10, 24, 42)
	require.NoError(t, err)

	sawRequest := false
	for step := 0; step < 24; step++ {
		r := ev.RequestedKW(step)
		assert.GreaterOrEqual(t, r, 0.0)
		if r > 0 {
			sawRequest = true
		}
	}
	assert.True(t, sawRequest, "a session should request power at some point in the day")
}

func TestEVChargerSeedDeterminism(t *testing.T) {
	a, _ := NewEVCharger(7.2, 4, 14, 3, 10, 24, 42)
	b, _ := NewEVCharger(7.2, 4, 14, 3, 10, 24, 42)
	for step := 0; step < 72; step++ {
		assert.Equal(t, a.RequestedKW(step), b.RequestedKW(step), "step %d", step)
	}
}

func TestEVChargerFullDispatchCompletesSession(t *testing.T) {
	ev, err := NewEVCharger(7.2, 4, 14, 3, 10, 24, 42)
	require.NoError(t, err)

	delivered := 0.0
	for step := 0; step < 24; step++ {
		delivered += ev.PowerKW(NewContext(step)) // dt = 1 h
	}
	require.NotNil(t, ev.session)
	assert.Greater(t, delivered, 0.0)
	// Uncurtailed, the session energy is fully delivered by the deadline.
	assert.InDelta(t, 0.0, ev.session.remainingKWh, 1e-9)
}

func TestEVChargerSetpointCurtailsPower(t *testing.T) {
	ev, err := NewEVCharger(7.2, 10, 10, 2, 2, 24, 42)
	require.NoError(t, err)

	// Find the session start, then curtail to 1 kW.
	for step := 0; step < 24; step++ {
		if ev.RequestedKW(step) > 0 {
			got := ev.PowerKW(NewContext(step).WithSetpoint(1))
			assert.InDelta(t, 1.0, got, 1e-9)
			return
		}
	}
	t.Fatal("no session found")
}

func TestEVChargerRequestRampsWhenCurtailed(t *testing.T) {
	ev, err := NewEVCharger(7.2, 10, 10, 4, 4, 24, 42)
	require.NoError(t, err)

	start := -1
	for step := 0; step < 24; step++ {
		if ev.RequestedKW(step) > 0 {
			start = step
			break
		}
	}
	require.GreaterOrEqual(t, start, 0)

	before := ev.RequestedKW(start)
	ev.PowerKW(NewContext(start).WithSetpoint(0)) // fully curtailed step
	after := ev.RequestedKW(start + 1)
	// Same energy over fewer remaining steps: the request grows.
	assert.Greater(t, after, before)
}

func TestEVChargerNeverExceedsRating(t *testing.T) {
	ev, err := NewEVCharger(3, 20, 20, 2, 3, 24, 7)
	require.NoError(t, err)
	for step := 0; step < 48; step++ {
		p := ev.PowerKW(NewContext(step).WithSetpoint(100))
		assert.LessOrEqual(t, p, 3.0, "step %d", step)
		assert.GreaterOrEqual(t, p, 0.0, "step %d", step)
	}
}

func TestEVChargerNewSessionEachDay(t *testing.T) {
	ev, err := NewEVCharger(7.2, 4, 14, 3, 10, 24, 42)
	require.NoError(t, err)

	var perDay [3]float64
	for step := 0; step < 72; step++ {
		perDay[step/24] += ev.PowerKW(NewContext(step))
	}
	for day, kwh := range perDay {
		assert.Greater(t, kwh, 0.0, "day %d should have a charging session", day)
	}
}

func TestEVChargerInvalidConfig(t *testing.T) {
	_, err := NewEVCharger(0, 4, 14, 3, 10, 24, 42)
	assert.Error(t, err, "zero rating")
	_, err = NewEVCharger(7.2, 14, 4, 3, 10, 24, 42)
	assert.Error(t, err, "inverted demand range")
	_, err = NewEVCharger(7.2, 4, 14, 10, 3, 24, 42)
	assert.Error(t, err, "inverted dwell range")
	_, err = NewEVCharger(7.2, 4, 14, 3, 10, 0, 42)
	assert.Error(t, err, "zero steps_per_day")
}
