package device

import (
	"fmt"
	"math"
	"math/rand"
)

// BaseLoad models the non-controllable site demand as a sinusoidal daily
// pattern with seeded Gaussian noise. Demand never goes negative.
type BaseLoad struct {
	BaseKW   float64
	AmpKW    float64
	PhaseRad float64
	NoiseStd float64

	stepsPerDay int
	rng         *rand.Rand
}

// NewBaseLoad builds a baseload profile generator.
func NewBaseLoad(baseKW, ampKW, phaseRad, noiseStd float64, stepsPerDay int, seed int64) (*BaseLoad, error) {
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("baseload: steps_per_day must be > 0, got %d", stepsPerDay)
	}
	if baseKW < 0 {
		return nil, fmt.Errorf("baseload: base_kw must be >= 0, got %v", baseKW)
	}
	return &BaseLoad{
		BaseKW:      baseKW,
		AmpKW:       ampKW,
		PhaseRad:    phaseRad,
		NoiseStd:    noiseStd,
		stepsPerDay: stepsPerDay,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// ExpectedKW returns the noise-free demand at timestep t. The forecaster
// uses this to predict demand without access to realized noise.
func (b *BaseLoad) ExpectedKW(t int) float64 {
	dayPos := float64(t%b.stepsPerDay) / float64(b.stepsPerDay)
	kw := b.BaseKW + b.AmpKW*math.Sin(2*math.Pi*dayPos+b.PhaseRad)
	return math.Max(kw, 0)
}

// PowerKW returns the realized demand at the given step: the expected
// sinusoid plus one noise draw, clamped to be non-negative.
func (b *BaseLoad) PowerKW(ctx Context) float64 {
	kw := b.ExpectedKW(ctx.Timestep) + gaussianNoise(b.rng, b.NoiseStd)
	return math.Max(kw, 0)
}

func (b *BaseLoad) Kind() string { return "BaseLoad" }
