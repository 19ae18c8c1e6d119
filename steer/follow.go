package steer

import "gonum.org/v1/gonum/spatial/r3"

// Follow steers toward every active percept regardless of distance: the
// result direction is the straight line to the percept with unit magnitude.
type Follow struct {
	Behavior
}

// NewFollow returns a follow behaviour targeting the given objective.
func NewFollow(objective int) *Follow {
	f := &Follow{
		Behavior: Behavior{
			Objective:           objective,
			ValueMapping:        MappingInverseLinear,
			Rule:                AssignGreater,
			MagnitudeMultiplier: 1,
			threadSafe:          true,
		},
	}
	f.hooks = hooks{perceptStep: f.perceptStep}
	return f
}

func (f *Follow) perceptStep(ev *Evaluation) {
	ev.Direction = r3.Sub(ev.Percept.Position, ev.Self.Position)
	ev.Magnitude = 1
}
