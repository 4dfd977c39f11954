package device

import (
	"fmt"
	"math"
	"math/rand"
)

// Cloud multiplier bounds: heavy overcast to edge-of-cloud enhancement.
const (
	cloudMultMin = 0.2
	cloudMultMax = 1.2
)

// SolarPVAR1 is a solar generator whose output is modulated by a
// temporally correlated cloud multiplier following an AR(1) process:
//
//	m(t) = alpha*m(t-1) + (1-alpha)*eps(t)
//
// Unlike SolarPV, consecutive steps share cloud state, producing
// realistic multi-step ramps. Output is negative per feeder convention.
type SolarPVAR1 struct {
	KWPeak        float64
	SunriseIdx    int
	SunsetIdx     int
	Alpha         float64
	CloudNoiseStd float64

	stepsPerDay int
	multiplier  float64
	rng         *rand.Rand
}

// NewSolarPVAR1 builds an AR(1)-cloud solar generator.
func NewSolarPVAR1(kwPeak float64, sunriseIdx, sunsetIdx int, alpha, cloudNoiseStd float64, stepsPerDay int, seed int64) (*SolarPVAR1, error) {
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("solar_ar1: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	if sunriseIdx < 0 || sunriseIdx >= sunsetIdx || sunsetIdx > stepsPerDay {
		return nil, fmt.Errorf("solar_ar1: need 0 <= sunrise_idx < sunset_idx <= steps_per_day, got sunrise=%d sunset=%d", sunriseIdx, sunsetIdx)
	}
	return &SolarPVAR1{
		KWPeak:        math.Max(kwPeak, 0),
		SunriseIdx:    sunriseIdx,
		SunsetIdx:     sunsetIdx,
		Alpha:         math.Min(math.Max(alpha, 0), 1),
		CloudNoiseStd: math.Max(cloudNoiseStd, 0),
		stepsPerDay:   stepsPerDay,
		multiplier:    1,
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

// advanceMultiplier steps the AR(1) cloud state. It runs every timestep,
// including at night, so temporal correlation survives the dark hours.
func (s *SolarPVAR1) advanceMultiplier() float64 {
	// Innovations revert toward clear sky (multiplier 1).
	eps := 1 + gaussianNoise(s.rng, s.CloudNoiseStd)
	s.multiplier = s.Alpha*s.multiplier + (1-s.Alpha)*eps
	s.multiplier = math.Min(math.Max(s.multiplier, cloudMultMin), cloudMultMax)
	return s.multiplier
}

// ExpectedKW returns the noise-free generation envelope at timestep t.
func (s *SolarPVAR1) ExpectedKW(t int) float64 {
	return -s.KWPeak * DaylightFrac(t, s.stepsPerDay, s.SunriseIdx, s.SunsetIdx)
}

func (s *SolarPVAR1) PowerKW(ctx Context) float64 {
	m := s.advanceMultiplier()
	frac := DaylightFrac(ctx.Timestep, s.stepsPerDay, s.SunriseIdx, s.SunsetIdx)
	if frac <= 0 {
		return 0
	}
	kw := s.KWPeak * frac * m
	return -math.Max(kw, 0)
}

func (s *SolarPVAR1) Kind() string { return "SolarPV_ar1" }
