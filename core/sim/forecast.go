package sim

// Forecaster predicts the site's uncontrolled net load (baseload plus
// solar, no battery, no EV) for any timestep.
type Forecaster interface {
	PredictKW(t int) float64
}

// ExpectedPower is the noise-free envelope a stochastic device exposes
// for planning. BaseLoad and both solar models implement it.
type ExpectedPower interface {
	ExpectedKW(t int) float64
}

// NaiveForecast sums the expected (noise-free) curves of the fixed
// devices. It deliberately has no access to the realized noise: the
// forecast error the controllers fight is exactly the devices' noise.
type NaiveForecast struct {
	fixed []ExpectedPower
}

func NewNaiveForecast(fixed ...ExpectedPower) *NaiveForecast {
	return &NaiveForecast{fixed: fixed}
}

func (f *NaiveForecast) PredictKW(t int) float64 {
	total := 0.0
	for _, d := range f.fixed {
		total += d.ExpectedKW(t)
	}
	return total
}
