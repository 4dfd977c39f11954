package sim

import "fmt"

// DemandResponseEvent asks the site to shed flexible load during a step
// window. Both StartStep and EndStep are inclusive: an event with
// start=17 end=20 is active for exactly four steps.
type DemandResponseEvent struct {
	StartStep int
	EndStep   int
	CurtailKW float64
}

// NewDemandResponseEvent validates a curtailment window.
func NewDemandResponseEvent(startStep, endStep int, curtailKW float64) (DemandResponseEvent, error) {
	if startStep < 0 {
		return DemandResponseEvent{}, fmt.Errorf("dr: start_step must be >= 0, got %d", startStep)
	}
	if endStep < startStep {
		return DemandResponseEvent{}, fmt.Errorf("dr: end_step %d before start_step %d", endStep, startStep)
	}
	if curtailKW < 0 {
		return DemandResponseEvent{}, fmt.Errorf("dr: curtail_kw must be >= 0, got %v", curtailKW)
	}
	return DemandResponseEvent{StartStep: startStep, EndStep: endStep, CurtailKW: curtailKW}, nil
}

// Active reports whether the event covers timestep t.
func (e DemandResponseEvent) Active(t int) bool {
	return t >= e.StartStep && t <= e.EndStep
}

// ActiveCurtailKW sums the curtailment requested by all events covering
// timestep t. Overlapping events stack.
func ActiveCurtailKW(events []DemandResponseEvent, t int) float64 {
	total := 0.0
	for _, e := range events {
		if e.Active(t) {
			total += e.CurtailKW
		}
	}
	return total
}
