package device

import (
	"fmt"
	"math"
	"math/rand"
)

// SolarPV models photovoltaic generation: zero outside the daylight
// window, a sine arch scaled to KWPeak inside it, perturbed by seeded
// multiplicative noise and clamped to [0, KWPeak].
//
// Output is negative (generation) per the feeder convention.
type SolarPV struct {
	KWPeak     float64
	SunriseIdx int
	SunsetIdx  int
	NoiseStd   float64

	stepsPerDay int
	rng         *rand.Rand
}

// NewSolarPV builds a solar generator. The daylight window must satisfy
// 0 <= sunrise < sunset <= stepsPerDay.
func NewSolarPV(kwPeak float64, sunriseIdx, sunsetIdx int, noiseStd float64, stepsPerDay int, seed int64) (*SolarPV, error) {
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("solar: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	if sunriseIdx < 0 || sunriseIdx >= sunsetIdx || sunsetIdx > stepsPerDay {
		return nil, fmt.Errorf("solar: need 0 <= sunrise_idx < sunset_idx <= steps_per_day, got sunrise=%d sunset=%d", sunriseIdx, sunsetIdx)
	}
	return &SolarPV{
		KWPeak:      math.Max(kwPeak, 0),
		SunriseIdx:  sunriseIdx,
		SunsetIdx:   sunsetIdx,
		NoiseStd:    math.Max(noiseStd, 0),
		stepsPerDay: stepsPerDay,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// ExpectedKW returns the noise-free generation envelope at timestep t in
// feeder convention (<= 0).
func (s *SolarPV) ExpectedKW(t int) float64 {
	return -s.KWPeak * DaylightFrac(t, s.stepsPerDay, s.SunriseIdx, s.SunsetIdx)
}

// PowerKW returns realized generation at the given step, negative during
// daylight and zero at night.
func (s *SolarPV) PowerKW(ctx Context) float64 {
	frac := DaylightFrac(ctx.Timestep, s.stepsPerDay, s.SunriseIdx, s.SunsetIdx)
	if frac <= 0 {
		return 0
	}
	mult := 1 + gaussianNoise(s.rng, s.NoiseStd)
	kw := s.KWPeak * frac * mult
	kw = math.Min(math.Max(kw, 0), s.KWPeak)
	return -kw
}

func (s *SolarPV) Kind() string { return "SolarPV" }
