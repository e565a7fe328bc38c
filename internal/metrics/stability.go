package metrics

import (
	"math"

	"github.com/san-kum/cooldown/internal/thermal"
)

// StallMargin tracks the smallest ratio of net to gross cooling power seen
// during a run. A value near zero means the run came close to stalling.
type StallMargin struct {
	name    string
	min     float64
	samples int
}

func NewStallMargin() *StallMargin {
	return &StallMargin{
		name: "stall_margin",
		min:  math.Inf(1),
	}
}

func (s *StallMargin) Name() string { return s.name }

func (s *StallMargin) Observe(_ thermal.State, step thermal.Step) {
	if !step.Taken || step.CoolingPower <= 0 {
		return
	}
	s.min = math.Min(s.min, step.NetPower/step.CoolingPower)
	s.samples++
}

func (s *StallMargin) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return s.min
}

func (s *StallMargin) Reset() {
	s.min = math.Inf(1)
	s.samples = 0
}
