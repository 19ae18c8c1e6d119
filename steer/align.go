package steer

// Align matches the orientation of a single target percept: the result
// direction is the percept's rotation applied to the plane's forward axis.
// It is always relevant and considers exactly one target.
type Align struct {
	Behavior
}

// NewAlign returns an align behaviour targeting the given objective.
func NewAlign(objective int) *Align {
	a := &Align{
		Behavior: Behavior{
			Objective:           objective,
			ValueMapping:        MappingInverseLinear,
			Rule:                AssignGreater,
			MagnitudeMultiplier: 1,
			threadSafe:          true,
		},
	}
	a.hooks = hooks{perceptStep: a.perceptStep, singlePercept: true}
	return a
}

func (a *Align) perceptStep(ev *Evaluation) {
	ev.Direction = ev.Percept.Rotation.Rotate(a.Plane.Forward())
	ev.Magnitude = 1
}

// Adjust matches the orientation of every neighbour inside the radius
// window, scaled by the radius-mapped distance. Combined with Addition it
// accumulates a consensus heading across the neighbourhood.
type Adjust struct {
	Behavior
	RadiusFilter
}

// NewAdjust returns an adjust behaviour targeting the given objective.
func NewAdjust(objective int) *Adjust {
	a := &Adjust{
		Behavior: Behavior{
			Objective:           objective,
			ValueMapping:        MappingInverseLinear,
			Rule:                Addition,
			MagnitudeMultiplier: 1,
			threadSafe:          true,
		},
		RadiusFilter: RadiusFilter{RadiusMapping: MappingInverseLinear},
	}
	a.hooks = hooks{start: a.start, perceptStep: a.perceptStep}
	return a
}

func (a *Adjust) start(ev *Evaluation) bool {
	return a.relevant(ev)
}

func (a *Adjust) perceptStep(ev *Evaluation) {
	ev.Direction = ev.Percept.Rotation.Rotate(a.Plane.Forward())
	ev.Magnitude = ev.RadiusMagnitude
}
