package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// DayAheadSchedule is the feeder power target the site commits to
// before the day starts. The target for each day is the flat average of
// the forecast net load over that day, clamped into the feeder band so
// the commitment is feasible on paper.
type DayAheadSchedule struct {
	stepsPerDay int
	dayTargets  []float64
}

// BuildDayAheadSchedule precomputes targets for all days of the run
// from the forecast alone.
func BuildDayAheadSchedule(fc Forecaster, limits FeederLimits, stepsPerDay, days int) (*DayAheadSchedule, error) {
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("schedule: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	if days < 0 {
		return nil, fmt.Errorf("schedule: days must be >= 0, got %d", days)
	}

	targets := make([]float64, days)
	forecast := make([]float64, stepsPerDay)
	for day := 0; day < days; day++ {
		for i := 0; i < stepsPerDay; i++ {
			forecast[i] = fc.PredictKW(day*stepsPerDay + i)
		}
		targets[day] = limits.Clamp(stat.Mean(forecast, nil))
	}
	return &DayAheadSchedule{stepsPerDay: stepsPerDay, dayTargets: targets}, nil
}

// TargetKW returns the committed feeder target for timestep t. Steps
// beyond the scheduled horizon reuse the last day's target.
func (s *DayAheadSchedule) TargetKW(t int) float64 {
	if len(s.dayTargets) == 0 {
		return 0
	}
	day := t / s.stepsPerDay
	if day < 0 {
		day = 0
	}
	if day >= len(s.dayTargets) {
		day = len(s.dayTargets) - 1
	}
	return s.dayTargets[day]
}
