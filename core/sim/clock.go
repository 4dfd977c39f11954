package sim

// Clock tracks the discrete simulation time. One tick advances exactly
// one timestep; wall-clock time never enters the simulation.
type Clock struct {
	stepsPerDay int
	step        int
}

func NewClock(stepsPerDay int) *Clock {
	return &Clock{stepsPerDay: stepsPerDay}
}

// Step returns the current timestep index since run start.
func (c *Clock) Step() int { return c.step }

// DayStep returns the position within the current day.
func (c *Clock) DayStep() int { return c.step % c.stepsPerDay }

// Day returns the current day index.
func (c *Clock) Day() int { return c.step / c.stepsPerDay }

// TimeHr returns hours since run start.
func (c *Clock) TimeHr() float64 {
	return float64(c.step) * 24 / float64(c.stepsPerDay)
}

// Tick advances the clock by one timestep and returns the new index.
func (c *Clock) Tick() int {
	c.step++
	return c.step
}
